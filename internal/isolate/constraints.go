package isolate

import (
	"fmt"
	"strconv"
)

type Constraints struct {
	CpuTimeLimInSec      float64
	ExtraCpuTimeLimInSec float64
	WallTimeLimInSec     float64
	MemoryLimitInKB      int
	// OutputLimitInKB caps every file the program writes. 0 means no cap.
	OutputLimitInKB int
	MaxProcesses    int
	MaxOpenFiles    int
}

// DefaultConstraints are generous limits suited to compilers.
func DefaultConstraints() Constraints {
	return Constraints{
		CpuTimeLimInSec:      30.0,
		ExtraCpuTimeLimInSec: 0.5,
		WallTimeLimInSec:     60.0,
		MemoryLimitInKB:      1024 * 1024,
		MaxProcesses:         128,
		MaxOpenFiles:         128,
	}
}

// SampleConstraints derives the limits for one sample run from the
// submission's time limit in seconds and memory limit in KiB.
func SampleConstraints(timeLimitSec, memLimitKiB, outputLimitKiB int) Constraints {
	return Constraints{
		CpuTimeLimInSec:      float64(timeLimitSec),
		ExtraCpuTimeLimInSec: 0.2,
		WallTimeLimInSec:     float64(2*timeLimitSec + 1),
		MemoryLimitInKB:      memLimitKiB,
		OutputLimitInKB:      outputLimitKiB,
		MaxProcesses:         1,
		MaxOpenFiles:         64,
	}
}

// Args renders the constraints. With cgroups the memory limit applies to
// the whole control group instead of the address space.
func (c Constraints) Args(cgroups bool) []string {
	mem := "--mem="
	if cgroups {
		mem = "--cg-mem="
	}
	args := []string{
		mem + strconv.Itoa(c.MemoryLimitInKB),
		fmt.Sprintf("--time=%.3f", c.CpuTimeLimInSec),
		fmt.Sprintf("--extra-time=%.3f", c.ExtraCpuTimeLimInSec),
		fmt.Sprintf("--wall-time=%.3f", c.WallTimeLimInSec),
		"--processes=" + strconv.Itoa(c.MaxProcesses),
		"--open-files=" + strconv.Itoa(c.MaxOpenFiles),
	}
	if c.OutputLimitInKB > 0 {
		args = append(args, "--fsize="+strconv.Itoa(c.OutputLimitInKB))
	}
	return args
}
