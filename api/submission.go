package api

import (
	"errors"
	"fmt"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// Submission describes one judging run. It must not change while the run
// is in progress.
type Submission struct {
	ProblemID string `toml:"problem_id" json:"problem_id"`
	SubmitID  string `toml:"submit_id" json:"submit_id,omitempty"`

	Compiler   string `toml:"compiler_name" json:"compiler_name"`
	SourcePath string `toml:"source_code" json:"source_code"`
	ExePath    string `toml:"exe_file" json:"exe_file"`
	ErrLogPath string `toml:"err_log" json:"err_log"`

	// TimeLimit is in seconds, MemLimit in kibibytes.
	TimeLimit   int `toml:"time_limit" json:"time_limit"`
	MemLimit    int `toml:"mem_limit" json:"mem_limit"`
	SampleCount int `toml:"sample_num" json:"sample_num"`
}

func (s Submission) Validate() error {
	switch {
	case s.SourcePath == "":
		return fmt.Errorf("%w: source path is empty", ErrInvalidSubmission)
	case s.ExePath == "":
		return fmt.Errorf("%w: exe path is empty", ErrInvalidSubmission)
	case s.ErrLogPath == "":
		return fmt.Errorf("%w: error log path is empty", ErrInvalidSubmission)
	case s.TimeLimit <= 0:
		return fmt.Errorf("%w: time limit must be positive, got %d", ErrInvalidSubmission, s.TimeLimit)
	case s.MemLimit <= 0:
		return fmt.Errorf("%w: memory limit must be positive, got %d", ErrInvalidSubmission, s.MemLimit)
	case s.SampleCount < 0:
		return fmt.Errorf("%w: sample count must not be negative, got %d", ErrInvalidSubmission, s.SampleCount)
	}
	return nil
}
