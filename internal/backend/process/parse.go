package process

import (
	"strconv"
	"strings"

	"github.com/programme-lv/grader/internal/backend"
)

// ParseResultLine parses "finalResult,timeUsed,memUsed". A single trailing
// newline is allowed; any other deviation yields a *backend.ProtocolError.
func ParseResultLine(raw string) (backend.RunOutcome, error) {
	line := strings.TrimSuffix(raw, "\n")
	if line == "" {
		return backend.RunOutcome{}, &backend.ProtocolError{Raw: raw, Reason: "empty output"}
	}
	if strings.ContainsAny(line, "\r\n") {
		return backend.RunOutcome{}, &backend.ProtocolError{Raw: raw, Reason: "expected exactly one line"}
	}

	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return backend.RunOutcome{}, &backend.ProtocolError{Raw: raw, Reason: "expected 3 comma separated fields"}
	}

	var nums [3]int64
	for i, f := range fields {
		n, err := parseField(f)
		if err != nil {
			return backend.RunOutcome{}, &backend.ProtocolError{Raw: raw, Reason: "field " + strconv.Itoa(i+1) + " is not an integer"}
		}
		nums[i] = n
	}
	if nums[1] < 0 || nums[2] < 0 {
		return backend.RunOutcome{}, &backend.ProtocolError{Raw: raw, Reason: "negative resource usage"}
	}

	return backend.RunOutcome{
		Fault:    backend.FaultCode(nums[0]),
		TimeUsed: nums[1],
		MemUsed:  nums[2],
	}, nil
}

func parseField(f string) (int64, error) {
	// strconv accepts a leading '+', the judge never prints one
	if strings.HasPrefix(f, "+") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(f, 10, 64)
}
