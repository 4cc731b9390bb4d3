package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/backend/isolated"
	"github.com/programme-lv/grader/internal/backend/native"
	"github.com/programme-lv/grader/internal/backend/process"
	"github.com/programme-lv/grader/internal/checkers"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/config"
	"github.com/programme-lv/grader/internal/fsjudge"
	"github.com/programme-lv/grader/internal/gatherer/natsgath"
	"github.com/programme-lv/grader/internal/isolate"
	"github.com/programme-lv/grader/internal/judge"
	"github.com/urfave/cli/v3"
)

// app holds what every command needs. close releases the backend and the
// NATS connection.
type app struct {
	cfg       *config.Config
	compilers *compilers.Registry
	backend   backend.Backend
	iso       *isolate.Isolate
	logger    *slog.Logger
	nc        *nats.Conn
	closers   []func() error
}

func setup(cmd *cli.Command) (*app, error) {
	logger := newLogger(cmd.Bool("verbose"))
	slog.SetDefault(logger)

	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("compiler registry: %w", err)
	}

	a := &app{cfg: cfg, compilers: reg, logger: logger}
	if err := a.openBackend(); err != nil {
		return nil, err
	}
	if cfg.NATS.URL != "" {
		nc, err := natsgath.Connect(cfg.NATS.URL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		a.nc = nc
		a.closers = append(a.closers, func() error { nc.Close(); return nil })
	}
	logger.Debug("grader ready", "backend", cfg.Backend.Kind, "work_dir", cfg.Work.Dir)
	return a, nil
}

func (a *app) openBackend() error {
	bc := a.cfg.Backend
	switch bc.Kind {
	case config.BackendNative:
		e, err := native.Open(bc.LibraryPath, a.logger)
		if err != nil {
			return err
		}
		a.backend = e
		a.closers = append(a.closers, e.Close)
	case config.BackendProcess:
		b, err := process.New(process.Config{JudgePath: bc.JudgePath, Compilers: a.compilers, Logger: a.logger})
		if err != nil {
			return err
		}
		a.backend = b
	case config.BackendIsolate:
		b, err := isolated.New(isolated.Config{
			Sandbox:        a.sandbox(),
			Compilers:      a.compilers,
			OutputLimitKiB: bc.OutputLimitKiB,
			Logger:         a.logger,
		})
		if err != nil {
			return err
		}
		a.backend = b
	default:
		return fmt.Errorf("unknown backend %q", bc.Kind)
	}
	return nil
}

// sandbox returns the isolate instance shared by the isolate backend and
// the checker compiler, so both draw box ids from one pool.
func (a *app) sandbox() *isolate.Isolate {
	if a.iso == nil {
		bc := a.cfg.Backend
		a.iso = isolate.New(isolate.Config{Binary: bc.IsolateBinary, Cgroups: bc.Cgroups, Logger: a.logger})
	}
	return a.iso
}

// comparator resolves a --comparator value. testlib-src checkers are
// compiled in the sandbox when a testlib header is configured.
func (a *app) comparator(ctx context.Context, name string) (checkers.Comparator, error) {
	var tc *checkers.TestlibCompiler
	if cc := a.cfg.Checkers; strings.HasPrefix(name, checkers.TestlibSourcePrefix) && cc.TestlibHeader != "" {
		var err error
		tc, err = checkers.NewTestlibCompiler(a.sandbox(), cc.TestlibHeader, cc.CacheDir)
		if err != nil {
			return nil, err
		}
	}
	return checkers.Resolve(ctx, name, tc)
}

// loadSubmission reads a descriptor. A missing sample_num means every
// test in problemDir.
func loadSubmission(path, problemDir string) (api.Submission, error) {
	if n := fsjudge.CountTests(problemDir); n > 0 {
		return config.LoadSubmissionWithSamples(path, n)
	}
	return config.LoadSubmission(path)
}

// gatherer returns the NATS gatherer when NATS is configured, joined with
// extra.
func (a *app) gatherer(extra ...judge.Gatherer) judge.Gatherer {
	gs := judge.Multi(extra)
	if a.nc != nil {
		gs = append(gs, natsgath.New(a.nc, a.cfg.NATS.Subject, a.logger))
	}
	return gs
}

func (a *app) perSubmissionGatherer() func(api.Submission) judge.Gatherer {
	if a.nc == nil {
		return nil
	}
	return func(api.Submission) judge.Gatherer { return a.gatherer() }
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
