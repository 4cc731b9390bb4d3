// Package backend defines the execution engine contract used by the judge.
// Implementations perform the actual compilation and the resource limited
// runs; callers only see statuses, fault codes and measurements.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// CompileStatus is the binary result of a compile call.
type CompileStatus int

const (
	CompileOK    CompileStatus = 0
	CompileError CompileStatus = 1
)

func (s CompileStatus) String() string {
	if s == CompileOK {
		return "ok"
	}
	return "error"
}

// FaultCode is the engine's final_result value for a run.
type FaultCode int

const (
	AllNormal           FaultCode = 0
	TimeLimitExceeded   FaultCode = 1
	MemoryLimitExceeded FaultCode = 2
	RuntimeError        FaultCode = 3
	OutputLimitExceeded FaultCode = 4
)

// RunOutcome is what the engine reports for one sample. TimeUsed (ms) and
// MemUsed (KiB) are meaningful only when Fault is AllNormal.
type RunOutcome struct {
	Fault    FaultCode
	TimeUsed int64
	MemUsed  int64
}

// Backend compiles and runs submissions. Every call blocks until the
// engine returns; limits are enforced by the engine, not the caller.
type Backend interface {
	Compile(ctx context.Context, sourcePath, exePath string, compilerID int, errLogPath string) (CompileStatus, error)
	RunSample(ctx context.Context, exePath, inputPath, outputPath string, timeLimit, memLimit int) (RunOutcome, error)
}

var (
	// ErrProtocol means the engine answered in a format we cannot parse.
	ErrProtocol = errors.New("backend protocol violation")
	// ErrUnavailable means the engine could not be reached or started.
	ErrUnavailable = errors.New("backend unavailable")
)

// ProtocolError carries the raw output that failed to parse.
type ProtocolError struct {
	Raw    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s (got %q)", ErrProtocol, e.Reason, e.Raw)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}
