package isolate

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status values written by isolate. An empty status means the program
// exited normally with code 0.
const (
	StatusOK       = ""
	StatusRuntime  = "RE"
	StatusSignal   = "SG"
	StatusTimeout  = "TO"
	StatusInternal = "XX"
)

// SIGXFSZ, raised when --fsize is exceeded.
const signalFileSize = 25

type Metrics struct {
	TimeSec      float64
	TimeWallSec  float64
	MaxRssKb     int64
	CswVoluntary int64
	CswForced    int64
	CgMemKb      int64
	CgOOMKilled  bool
	Killed       bool
	ExitCode     int64
	ExitSignal   int64
	Status       string
	Message      string
}

// TimeMs is the CPU time rounded to milliseconds.
func (m *Metrics) TimeMs() int64 {
	return int64(math.Round(m.TimeSec * 1000))
}

// MemKb prefers the cgroup peak over max-rss when it was recorded.
func (m *Metrics) MemKb() int64 {
	if m.CgMemKb > 0 {
		return m.CgMemKb
	}
	return m.MaxRssKb
}

func (m *Metrics) FileSizeExceeded() bool {
	return m.Status == StatusSignal && m.ExitSignal == signalFileSize
}

// ParseMeta reads a "key:value" per line meta file. Unknown keys are
// ignored.
func ParseMeta(content []byte) (*Metrics, error) {
	m := &Metrics{}
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed meta line %q", line)
		}

		var err error
		switch key {
		case "time":
			m.TimeSec, err = strconv.ParseFloat(value, 64)
		case "time-wall":
			m.TimeWallSec, err = strconv.ParseFloat(value, 64)
		case "max-rss":
			m.MaxRssKb, err = strconv.ParseInt(value, 10, 64)
		case "csw-voluntary":
			m.CswVoluntary, err = strconv.ParseInt(value, 10, 64)
		case "csw-forced":
			m.CswForced, err = strconv.ParseInt(value, 10, 64)
		case "cg-mem":
			m.CgMemKb, err = strconv.ParseInt(value, 10, 64)
		case "cg-oom-killed":
			m.CgOOMKilled = value == "1"
		case "killed":
			m.Killed = value == "1"
		case "exitcode":
			m.ExitCode, err = strconv.ParseInt(value, 10, 64)
		case "exitsig":
			m.ExitSignal, err = strconv.ParseInt(value, 10, 64)
		case "status":
			m.Status = value
		case "message":
			m.Message = value
		}
		if err != nil {
			return nil, fmt.Errorf("meta key %s: %w", key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
