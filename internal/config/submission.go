package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/grader/api"
)

// ErrLegacyTimeLimitKey rejects descriptors that spell the time limit as
// time_limie. Such files used to get a silent 1 second limit.
var ErrLegacyTimeLimitKey = errors.New("submission uses misspelled key time_limie, use time_limit")

const (
	defaultSampleCount = 1
	defaultMemLimitKiB = 20 * 1024
)

// LoadSubmission decodes a submission descriptor. Relative paths are
// resolved against the descriptor's directory. sample_num and mem_limit
// default to 1 and 20 MiB; time_limit has no default.
func LoadSubmission(path string) (api.Submission, error) {
	return LoadSubmissionWithSamples(path, defaultSampleCount)
}

// LoadSubmissionWithSamples is LoadSubmission with sampleCount used when
// the descriptor has no sample_num.
func LoadSubmissionWithSamples(path string, sampleCount int) (api.Submission, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return api.Submission{}, fmt.Errorf("read submission: %w", err)
	}

	var keys map[string]any
	if err := toml.Unmarshal(content, &keys); err != nil {
		return api.Submission{}, fmt.Errorf("parse submission %s: %w", path, err)
	}
	if _, ok := keys["time_limie"]; ok {
		return api.Submission{}, fmt.Errorf("%s: %w", path, ErrLegacyTimeLimitKey)
	}

	sub := api.Submission{SampleCount: sampleCount, MemLimit: defaultMemLimitKiB}
	if err := toml.Unmarshal(content, &sub); err != nil {
		return api.Submission{}, fmt.Errorf("parse submission %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&sub.SourcePath, &sub.ExePath, &sub.ErrLogPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if err := sub.Validate(); err != nil {
		return api.Submission{}, fmt.Errorf("%s: %w", path, err)
	}
	return sub, nil
}
