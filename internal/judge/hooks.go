package judge

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrHook wraps every failure reported by a Hooks implementation.
var ErrHook = errors.New("judge hook failed")

//go:generate mockgen -source=hooks.go -destination=mocks/mock_hooks.go -package=mocks

// Hooks supplies test data, answer comparison and workspace cleanup for
// one deployment. Filesystem, database and special-judge setups are
// different implementations of the same interface.
type Hooks interface {
	// TestInput returns the path of the input file for sample id.
	TestInput(id int) (string, error)
	// StandardAnswer returns the path of the expected answer for sample id.
	StandardAnswer(id int) (string, error)
	// CheckAnswer compares the submission output with the expected answer.
	CheckAnswer(standard, actual string) (bool, error)

	ClearCompileSpace() error
	ClearRunSpace() error
}

// OutputPather lets Hooks choose where a sample's output is captured.
// Without it the judge uses DefaultSampleOutputPath.
type OutputPather interface {
	SampleOutputPath(id int) string
}

// DefaultSampleOutputPath places sample outputs next to the executable.
func DefaultSampleOutputPath(exePath string, id int) string {
	return filepath.Join(filepath.Dir(exePath), fmt.Sprintf("sample_%d.out", id))
}
