package api

// MaxErrorMsgLength bounds the compile error message in bytes.
const MaxErrorMsgLength = 1024

type CompileStatus string

const (
	CompileOK    CompileStatus = "COMPILE_OK"
	CompileError CompileStatus = "COMPILE_ERROR"
)

// SampleResult is the outcome of one sample. TimeUsedMs and MemUsedKiB
// are zero unless the verdict is Accepted.
type SampleResult struct {
	Verdict    Verdict `json:"verdict"`
	TimeUsedMs int64   `json:"time_ms"`
	MemUsedKiB int64   `json:"mem_kib"`
}

// JudgeResult is either a successful compile with one result per sample
// or a compile error with the (truncated) compiler log.
type JudgeResult struct {
	Status  CompileStatus  `json:"status"`
	Samples []SampleResult `json:"samples"`
	Message string         `json:"message,omitempty"`
}

func NewCompiledResult(samples []SampleResult) JudgeResult {
	if samples == nil {
		samples = []SampleResult{}
	}
	return JudgeResult{Status: CompileOK, Samples: samples}
}

func NewCompileErrorResult(msg string) JudgeResult {
	return JudgeResult{Status: CompileError, Message: TruncateErrorMsg(msg)}
}

// Accepted reports whether compilation succeeded and every sample passed.
func (r JudgeResult) Accepted() bool {
	if r.Status != CompileOK {
		return false
	}
	for _, s := range r.Samples {
		if s.Verdict != Accepted {
			return false
		}
	}
	return true
}

// Verdicts lists the per-sample verdicts in sample order.
func (r JudgeResult) Verdicts() []Verdict {
	res := make([]Verdict, 0, len(r.Samples))
	for _, s := range r.Samples {
		res = append(res, s.Verdict)
	}
	return res
}

func TruncateErrorMsg(msg string) string {
	if len(msg) > MaxErrorMsgLength {
		return msg[:MaxErrorMsgLength]
	}
	return msg
}
