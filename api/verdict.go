package api

// Verdict is the final classification of one sample run.
type Verdict string

const (
	Accepted            Verdict = "AC"
	WrongAnswer         Verdict = "WA"
	TimeLimitExceeded   Verdict = "TLE"
	MemoryLimitExceeded Verdict = "MLE"
	RuntimeError        Verdict = "RE"
	OutputLimitExceeded Verdict = "OLE"
	Unknown             Verdict = "UNK"
)

var verdictNames = map[Verdict]string{
	Accepted:            "Accepted",
	WrongAnswer:         "Wrong Answer",
	TimeLimitExceeded:   "Time Limit Exceeded",
	MemoryLimitExceeded: "Memory Limit Exceeded",
	RuntimeError:        "Runtime Error",
	OutputLimitExceeded: "Output Limit Exceeded",
	Unknown:             "Unknown",
}

// FullName returns the human readable verdict name.
func (v Verdict) FullName() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return verdictNames[Unknown]
}

// Valid reports whether v belongs to the closed verdict set.
func (v Verdict) Valid() bool {
	_, ok := verdictNames[v]
	return ok
}
