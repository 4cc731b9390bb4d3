package judge

import (
	"context"
	"fmt"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
)

func (j *Judge) outputPath(sub api.Submission, id int) string {
	if p, ok := j.hooks.(OutputPather); ok {
		return p.SampleOutputPath(id)
	}
	return DefaultSampleOutputPath(sub.ExePath, id)
}

func (j *Judge) runSample(ctx context.Context, sub api.Submission, id int) (api.SampleResult, error) {
	input, err := j.hooks.TestInput(id)
	if err != nil {
		return api.SampleResult{}, fmt.Errorf("%w: test input: %w", ErrHook, err)
	}
	output := j.outputPath(sub, id)

	out, err := j.backend.RunSample(ctx, sub.ExePath, input, output, sub.TimeLimit, sub.MemLimit)
	if err != nil {
		return api.SampleResult{}, fmt.Errorf("run: %w", err)
	}

	// Measurements of a faulted run are not meaningful.
	if out.Fault != backend.AllNormal {
		return api.SampleResult{Verdict: VerdictForFault(out.Fault)}, nil
	}

	standard, err := j.hooks.StandardAnswer(id)
	if err != nil {
		return api.SampleResult{}, fmt.Errorf("%w: standard answer: %w", ErrHook, err)
	}
	same, err := j.hooks.CheckAnswer(standard, output)
	if err != nil {
		return api.SampleResult{}, fmt.Errorf("%w: check answer: %w", ErrHook, err)
	}
	if !same {
		return api.SampleResult{Verdict: api.WrongAnswer}, nil
	}
	return api.SampleResult{
		Verdict:    api.Accepted,
		TimeUsedMs: out.TimeUsed,
		MemUsedKiB: out.MemUsed,
	}, nil
}
