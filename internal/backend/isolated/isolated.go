// Package isolated implements the execution backend on the isolate
// sandbox. Every compile and every sample gets a fresh box.
package isolated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/isolate"
)

const (
	boxExe    = "main"
	boxInput  = "input.txt"
	boxOutput = "output.txt"
	boxErrLog = "compile.err"
)

// Sandbox is the part of isolate.Isolate the backend needs.
type Sandbox interface {
	NewBox(ctx context.Context) (*isolate.Box, error)
}

type Config struct {
	Sandbox   Sandbox
	Compilers *compilers.Registry
	// OutputLimitKiB caps the program output of a sample. 0 disables it.
	OutputLimitKiB int
	Logger         *slog.Logger
}

type Backend struct {
	sandbox     Sandbox
	compilers   *compilers.Registry
	outputLimit int
	logger      *slog.Logger
}

var _ backend.Backend = (*Backend)(nil)

func New(cfg Config) (*Backend, error) {
	if cfg.Sandbox == nil {
		return nil, errors.New("sandbox is required")
	}
	if cfg.Compilers == nil {
		return nil, errors.New("compiler registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		sandbox:     cfg.Sandbox,
		compilers:   cfg.Compilers,
		outputLimit: cfg.OutputLimitKiB,
		logger:      logger.With("backend", "isolate"),
	}, nil
}

func (b *Backend) Compile(ctx context.Context, sourcePath, exePath string, compilerID int, errLogPath string) (backend.CompileStatus, error) {
	c, ok := b.compilers.ByID(compilerID)
	if !ok || len(c.CompileCmd) == 0 {
		b.logger.Info("no compile command for compiler", "compiler_id", compilerID)
		msg := fmt.Sprintf("unknown compiler id %d\n", compilerID)
		if err := os.WriteFile(errLogPath, []byte(msg), 0o644); err != nil {
			return backend.CompileError, fmt.Errorf("write compile log: %w", err)
		}
		return backend.CompileError, nil
	}

	box, err := b.sandbox.NewBox(ctx)
	if err != nil {
		return backend.CompileError, fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	defer func() {
		if cerr := box.Close(); cerr != nil {
			b.logger.Warn("failed to close box", "box", box.ID(), "error", cerr)
		}
	}()

	src := filepath.Base(sourcePath)
	if err := box.CopyIn(sourcePath, src, 0o644); err != nil {
		return backend.CompileError, fmt.Errorf("copy source into box: %w", err)
	}

	cmd := box.Command(c.Command(src, boxExe), isolate.DefaultConstraints(), isolate.RunOptions{
		Stderr: boxErrLog,
		Env:    []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
	})
	m, err := cmd.Run(ctx)
	if err != nil {
		return backend.CompileError, fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	if m.Status == isolate.StatusInternal {
		return backend.CompileError, fmt.Errorf("%w: isolate: %s", backend.ErrUnavailable, m.Message)
	}

	if box.HasFile(boxErrLog) {
		if err := box.CopyOut(boxErrLog, errLogPath, 0o644); err != nil {
			return backend.CompileError, fmt.Errorf("copy compile log: %w", err)
		}
	}
	if m.Status != isolate.StatusOK || m.ExitCode != 0 || !box.HasFile(boxExe) {
		b.logger.Debug("compilation rejected", "box", box.ID(), "status", m.Status, "exit_code", m.ExitCode)
		return backend.CompileError, nil
	}
	if err := box.CopyOut(boxExe, exePath, 0o755); err != nil {
		return backend.CompileError, fmt.Errorf("copy executable: %w", err)
	}
	return backend.CompileOK, nil
}

func (b *Backend) RunSample(ctx context.Context, exePath, inputPath, outputPath string, timeLimit, memLimit int) (backend.RunOutcome, error) {
	box, err := b.sandbox.NewBox(ctx)
	if err != nil {
		return backend.RunOutcome{}, fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}
	defer func() {
		if cerr := box.Close(); cerr != nil {
			b.logger.Warn("failed to close box", "box", box.ID(), "error", cerr)
		}
	}()

	if err := box.CopyIn(exePath, boxExe, 0o755); err != nil {
		return backend.RunOutcome{}, fmt.Errorf("copy executable into box: %w", err)
	}
	if err := box.CopyIn(inputPath, boxInput, 0o644); err != nil {
		return backend.RunOutcome{}, fmt.Errorf("copy input into box: %w", err)
	}

	constraints := isolate.SampleConstraints(timeLimit, memLimit, b.outputLimit)
	m, err := box.Command([]string{"./" + boxExe}, constraints, isolate.RunOptions{
		Stdin:  boxInput,
		Stdout: boxOutput,
	}).Run(ctx)
	if err != nil {
		return backend.RunOutcome{}, fmt.Errorf("%w: %w", backend.ErrUnavailable, err)
	}

	out, err := Outcome(m)
	if err != nil {
		return backend.RunOutcome{}, err
	}
	b.logger.Debug("sample run finished", "box", box.ID(), "fault", out.Fault,
		"status", m.Status, "time_ms", out.TimeUsed, "mem_kib", out.MemUsed)

	if box.HasFile(boxOutput) {
		err = box.CopyOut(boxOutput, outputPath, 0o644)
	} else {
		err = os.WriteFile(outputPath, nil, 0o644)
	}
	if err != nil {
		return backend.RunOutcome{}, fmt.Errorf("copy output: %w", err)
	}
	return out, nil
}

// Outcome maps isolate's report onto a fault code.
func Outcome(m *isolate.Metrics) (backend.RunOutcome, error) {
	out := backend.RunOutcome{TimeUsed: m.TimeMs(), MemUsed: m.MemKb()}
	switch m.Status {
	case isolate.StatusOK:
		out.Fault = backend.AllNormal
	case isolate.StatusTimeout:
		out.Fault = backend.TimeLimitExceeded
	case isolate.StatusSignal:
		switch {
		case m.CgOOMKilled:
			out.Fault = backend.MemoryLimitExceeded
		case m.FileSizeExceeded():
			out.Fault = backend.OutputLimitExceeded
		default:
			out.Fault = backend.RuntimeError
		}
	case isolate.StatusRuntime:
		out.Fault = backend.RuntimeError
	case isolate.StatusInternal:
		return backend.RunOutcome{}, fmt.Errorf("%w: isolate: %s", backend.ErrUnavailable, m.Message)
	default:
		return backend.RunOutcome{}, &backend.ProtocolError{Raw: m.Status, Reason: "unknown isolate status"}
	}
	return out, nil
}
