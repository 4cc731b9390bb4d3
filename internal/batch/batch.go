// Package batch judges many submissions concurrently. Each submission gets
// its own judge and its own workspace; only the backend and the compiler
// registry are shared.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/checkers"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/fsjudge"
	"github.com/programme-lv/grader/internal/judge"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

type Job struct {
	Submission api.Submission
	ProblemDir string
	Comparator checkers.Comparator
}

// Outcome is the result of one job. Err is an infrastructure failure of
// that job alone.
type Outcome struct {
	Result api.JudgeResult
	Err    error
}

type Runner struct {
	Backend   backend.Backend
	Compilers *compilers.Registry
	// WorkDir holds one sub directory per submission.
	WorkDir     string
	Concurrency int
	Logger      *slog.Logger
	// Gatherer, if set, returns the gatherer for one submission.
	Gatherer func(sub api.Submission) judge.Gatherer
}

// Run judges the jobs and returns their outcomes keyed by submit id. Jobs
// without a submit id get a generated one.
func (r *Runner) Run(ctx context.Context, jobs []Job) (map[string]Outcome, error) {
	if r.Backend == nil || r.Compilers == nil {
		return nil, fmt.Errorf("batch runner needs a backend and a compiler registry")
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jobs = slices.Clone(jobs)
	seen := mapset.NewThreadUnsafeSet[string]()
	for i := range jobs {
		if jobs[i].Submission.SubmitID == "" {
			jobs[i].Submission.SubmitID = uuid.NewString()
		}
		if !filepath.IsLocal(jobs[i].Submission.SubmitID) {
			return nil, fmt.Errorf("submit id %q is not a plain directory name", jobs[i].Submission.SubmitID)
		}
		if !seen.Add(jobs[i].Submission.SubmitID) {
			return nil, fmt.Errorf("duplicate submit id %q", jobs[i].Submission.SubmitID)
		}
	}

	results := xsync.NewMapOf[string, Outcome]()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Concurrency, 1))

	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.judgeOne(ctx, logger, job)
			if err != nil {
				logger.Error("submission failed", "submit_id", job.Submission.SubmitID, "error", err)
			}
			results.Store(job.Submission.SubmitID, Outcome{Result: res, Err: err})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Outcome, results.Size())
	results.Range(func(id string, o Outcome) bool {
		out[id] = o
		return true
	})
	return out, nil
}

func (r *Runner) judgeOne(ctx context.Context, logger *slog.Logger, job Job) (api.JudgeResult, error) {
	sub := job.Submission
	hooks, err := fsjudge.New(fsjudge.Config{
		ProblemDir:       job.ProblemDir,
		WorkDir:          filepath.Join(r.WorkDir, sub.SubmitID),
		Comparator:       job.Comparator,
		CompileArtifacts: []string{sub.ExePath, sub.ErrLogPath},
		Logger:           logger,
	})
	if err != nil {
		return api.JudgeResult{}, err
	}

	opts := []judge.Option{judge.WithLogger(logger)}
	if r.Gatherer != nil {
		opts = append(opts, judge.WithGatherer(r.Gatherer(sub)))
	}
	j, err := judge.New(r.Backend, hooks, r.Compilers, opts...)
	if err != nil {
		return api.JudgeResult{}, err
	}
	return j.Run(ctx, sub)
}
