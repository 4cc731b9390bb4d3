package behave

import (
	"context"
	"fmt"

	"github.com/programme-lv/grader/internal/batch"
)

type Report struct {
	Case Case
	// Err is nil when the scenario behaved as expected.
	Err error
}

func (r Report) Passed() bool { return r.Err == nil }

// Run materializes the cases under dir, judges them with runner and
// checks every outcome.
func Run(ctx context.Context, runner *batch.Runner, cases []Case, dir string) ([]Report, error) {
	jobs := make([]batch.Job, 0, len(cases))
	for _, c := range cases {
		job, err := c.Materialize(dir)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", c.Name, err)
		}
		jobs = append(jobs, job)
	}

	outcomes, err := runner.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(cases))
	for i, c := range cases {
		o := outcomes[jobs[i].Submission.SubmitID]
		r := Report{Case: c, Err: o.Err}
		if o.Err == nil {
			r.Err = c.Check(o.Result)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
