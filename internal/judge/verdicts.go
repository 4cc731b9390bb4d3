package judge

import (
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
)

// faultVerdicts maps engine fault codes to verdicts. New faults are
// supported by adding entries here.
var faultVerdicts = map[backend.FaultCode]api.Verdict{
	backend.TimeLimitExceeded:   api.TimeLimitExceeded,
	backend.MemoryLimitExceeded: api.MemoryLimitExceeded,
	backend.RuntimeError:        api.RuntimeError,
	backend.OutputLimitExceeded: api.OutputLimitExceeded,
}

// VerdictForFault classifies a faulted run. Unmapped codes are Unknown.
func VerdictForFault(code backend.FaultCode) api.Verdict {
	if v, ok := faultVerdicts[code]; ok {
		return v
	}
	return api.Unknown
}
