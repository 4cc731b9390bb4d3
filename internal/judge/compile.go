package judge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/compilers"
)

func (j *Judge) compile(ctx context.Context, sub api.Submission) (ok bool, msg string, err error) {
	compilerID := j.compilers.ID(sub.Compiler)
	if compilerID == compilers.InvalidID {
		known := j.compilers.Names().ToSlice()
		slices.Sort(known)
		j.logger.Warn("unknown compiler", "compiler", sub.Compiler, "known", known)
	}
	status, err := j.backend.Compile(ctx, sub.SourcePath, sub.ExePath, compilerID, sub.ErrLogPath)
	if err != nil {
		return false, "", fmt.Errorf("compile %s with %q: %w", sub.SourcePath, sub.Compiler, err)
	}
	if status == backend.CompileOK {
		return true, "", nil
	}
	msg, err = CompileErrorMessage(sub.ErrLogPath)
	if err != nil {
		return false, "", err
	}
	return false, msg, nil
}

// CompileErrorMessage reads at most api.MaxErrorMsgLength bytes of the
// compiler log. A missing log is not an error and yields "".
func CompileErrorMessage(errLogPath string) (string, error) {
	f, err := os.Open(errLogPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open compile log: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, api.MaxErrorMsgLength))
	if err != nil {
		return "", fmt.Errorf("read compile log: %w", err)
	}
	return string(b), nil
}
