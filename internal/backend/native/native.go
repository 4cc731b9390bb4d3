// Package native calls the lambdaOJ2 engine library in process.
//
// The library is loaded by Open and released by Close. Builds without the
// lambdaoj tag carry a stub whose Open always fails with
// backend.ErrUnavailable.
package native

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/programme-lv/grader/internal/backend"
)

const DefaultLibrary = "liblambdaOJ2.so"

var ErrClosed = errors.New("native engine is closed")

type Engine struct {
	// The engine library is not known to be reentrant; calls are serialized.
	mu     sync.Mutex
	lib    *library
	logger *slog.Logger
}

var _ backend.Backend = (*Engine)(nil)

// Open loads the engine library from path, or DefaultLibrary when empty.
func Open(path string, logger *slog.Logger) (*Engine, error) {
	if path == "" {
		path = DefaultLibrary
	}
	if logger == nil {
		logger = slog.Default()
	}
	lib, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", backend.ErrUnavailable, path, err)
	}
	logger.Debug("engine library loaded", "path", path)
	return &Engine{lib: lib, logger: logger.With("backend", "native")}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lib == nil {
		return nil
	}
	err := e.lib.close()
	e.lib = nil
	return err
}

// Compile ignores ctx: a library call cannot be interrupted.
func (e *Engine) Compile(_ context.Context, sourcePath, exePath string, compilerID int, errLogPath string) (backend.CompileStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lib == nil {
		return backend.CompileError, ErrClosed
	}
	if e.lib.compile(sourcePath, exePath, compilerID, errLogPath) != int(backend.CompileOK) {
		return backend.CompileError, nil
	}
	return backend.CompileOK, nil
}

func (e *Engine) RunSample(_ context.Context, exePath, inputPath, outputPath string, timeLimit, memLimit int) (backend.RunOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lib == nil {
		return backend.RunOutcome{}, ErrClosed
	}
	out := e.lib.runTask(exePath, inputPath, outputPath, timeLimit, memLimit)
	e.logger.Debug("task finished", "input", inputPath, "fault", out.Fault,
		"time_ms", out.TimeUsed, "mem_kib", out.MemUsed)
	return out, nil
}
