// Package process runs submissions through an external judge binary that
// is invoked once per sample.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/compilers"
)

type Config struct {
	// JudgePath is invoked as: judge <exe> <input> <output> <time_limit> <mem_limit>
	JudgePath string
	Compilers *compilers.Registry
	Logger    *slog.Logger
}

type Backend struct {
	judgePath string
	compilers *compilers.Registry
	logger    *slog.Logger
}

var _ backend.Backend = (*Backend)(nil)

func New(cfg Config) (*Backend, error) {
	if cfg.JudgePath == "" {
		return nil, fmt.Errorf("judge path is required")
	}
	if cfg.Compilers == nil {
		return nil, fmt.Errorf("compiler registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		judgePath: cfg.JudgePath,
		compilers: cfg.Compilers,
		logger:    logger.With("backend", "process"),
	}, nil
}

// Compile runs the registry's command for compilerID. Compiler stderr goes
// to errLogPath. A non-zero exit is a compile error, not a Go error.
func (b *Backend) Compile(ctx context.Context, sourcePath, exePath string, compilerID int, errLogPath string) (backend.CompileStatus, error) {
	errLog, err := os.Create(errLogPath)
	if err != nil {
		return backend.CompileError, fmt.Errorf("create compile log: %w", err)
	}
	defer errLog.Close()

	c, ok := b.compilers.ByID(compilerID)
	if !ok || len(c.CompileCmd) == 0 {
		b.logger.Info("no compile command for compiler", "compiler_id", compilerID)
		fmt.Fprintf(errLog, "unknown compiler id %d\n", compilerID)
		return backend.CompileError, nil
	}

	args := c.Command(sourcePath, exePath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = errLog

	err = cmd.Run()
	if err != nil && ctx.Err() != nil {
		return backend.CompileError, fmt.Errorf("compiler interrupted: %w", ctx.Err())
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return backend.CompileOK, nil
	case errors.As(err, &exitErr):
		b.logger.Debug("compiler exited", "compiler", c.Name, "exit_code", exitErr.ExitCode())
		return backend.CompileError, nil
	default:
		return backend.CompileError, fmt.Errorf("%w: run %s: %w", backend.ErrUnavailable, args[0], err)
	}
}

// RunSample invokes the judge binary and parses its single result line.
func (b *Backend) RunSample(ctx context.Context, exePath, inputPath, outputPath string, timeLimit, memLimit int) (backend.RunOutcome, error) {
	cmd := exec.CommandContext(ctx, b.judgePath,
		exePath,
		inputPath,
		outputPath,
		strconv.Itoa(timeLimit),
		strconv.Itoa(memLimit),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if ctx.Err() != nil {
			return backend.RunOutcome{}, fmt.Errorf("judge interrupted: %w", ctx.Err())
		}
		return backend.RunOutcome{}, fmt.Errorf("%w: judge %s: %w (stderr: %q)",
			backend.ErrUnavailable, b.judgePath, err, msg)
	}

	out, err := ParseResultLine(stdout.String())
	if err != nil {
		return backend.RunOutcome{}, err
	}
	b.logger.Debug("judge finished", "input", inputPath, "fault", out.Fault,
		"time_ms", out.TimeUsed, "mem_kib", out.MemUsed)
	return out, nil
}
