// Package judge drives one submission through compilation and sample
// execution and aggregates the verdicts.
package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/compilers"
)

// State is a step of the judging state machine.
type State string

const (
	StateInit           State = "init"
	StateCompiling      State = "compiling"
	StateCompileError   State = "compile_error"
	StateCompiled       State = "compiled"
	StateRunningSamples State = "running_samples"
	StateDone           State = "done"
)

type Judge struct {
	backend   backend.Backend
	hooks     Hooks
	compilers *compilers.Registry
	gatherer  Gatherer
	logger    *slog.Logger
}

type Option func(*Judge)

func WithGatherer(g Gatherer) Option {
	return func(j *Judge) {
		if g != nil {
			j.gatherer = g
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(j *Judge) {
		if l != nil {
			j.logger = l
		}
	}
}

// New creates a judge bound to one backend and one set of hooks. The hooks
// own the workspace, so a Judge must not be shared between submissions
// that use different workspaces.
func New(b backend.Backend, hooks Hooks, reg *compilers.Registry, opts ...Option) (*Judge, error) {
	if b == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if hooks == nil {
		return nil, fmt.Errorf("hooks are required")
	}
	if reg == nil {
		return nil, fmt.Errorf("compiler registry is required")
	}
	j := &Judge{
		backend:   b,
		hooks:     hooks,
		compilers: reg,
		gatherer:  nopGatherer{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Run compiles the submission and, if that succeeds, runs every sample in
// order. A non-nil error means the judging infrastructure failed; verdicts
// and compile errors are reported through the result.
func (j *Judge) Run(ctx context.Context, sub api.Submission) (res api.JudgeResult, err error) {
	if err := sub.Validate(); err != nil {
		return api.JudgeResult{}, err
	}
	if sub.SubmitID == "" {
		sub.SubmitID = uuid.NewString()
	}
	log := j.logger.With("submit_id", sub.SubmitID, "problem_id", sub.ProblemID)

	state := StateInit
	move := func(next State) {
		log.Debug("judge state changed", "from", state, "to", next)
		state = next
	}

	j.gatherer.StartJob(sub)
	defer func() {
		cleanupErr := j.cleanup(log, state)
		if err != nil {
			err = errors.Join(err, cleanupErr)
			j.gatherer.InternalError(err)
		}
	}()

	move(StateCompiling)
	j.gatherer.StartCompile()
	ok, msg, err := j.compile(ctx, sub)
	if err != nil {
		return api.JudgeResult{}, err
	}
	if !ok {
		move(StateCompileError)
		j.gatherer.FinishCompile(api.CompileError)
		j.gatherer.CompileError(msg)
		log.Info("compilation failed", "message_len", len(msg))
		return api.NewCompileErrorResult(msg), nil
	}
	move(StateCompiled)
	j.gatherer.FinishCompile(api.CompileOK)

	move(StateRunningSamples)
	samples := make([]api.SampleResult, 0, sub.SampleCount)
	for id := 0; id < sub.SampleCount; id++ {
		j.gatherer.ReachSample(id)
		sr, err := j.runSample(ctx, sub, id)
		if err != nil {
			return api.JudgeResult{}, fmt.Errorf("sample %d: %w", id, err)
		}
		log.Debug("sample finished", "sample", id, "verdict", sr.Verdict,
			"time_ms", sr.TimeUsedMs, "mem_kib", sr.MemUsedKiB)
		j.gatherer.FinishSample(id, sr)
		samples = append(samples, sr)
	}
	move(StateDone)

	res = api.NewCompiledResult(samples)
	log.Info("judging finished", "samples", len(samples), "accepted", res.Accepted())
	j.gatherer.FinishNoError(res)
	return res, nil
}

// cleanup releases the workspace for the branch that was taken. Compile
// space is always released; run space only once compilation succeeded.
func (j *Judge) cleanup(log *slog.Logger, state State) error {
	var errs []error
	if err := j.hooks.ClearCompileSpace(); err != nil {
		log.Warn("failed to clear compile space", "error", err)
		errs = append(errs, fmt.Errorf("%w: clear compile space: %w", ErrHook, err))
	}
	if state == StateCompiled || state == StateRunningSamples || state == StateDone {
		if err := j.hooks.ClearRunSpace(); err != nil {
			log.Warn("failed to clear run space", "error", err)
			errs = append(errs, fmt.Errorf("%w: clear run space: %w", ErrHook, err))
		}
	}
	return errors.Join(errs...)
}
