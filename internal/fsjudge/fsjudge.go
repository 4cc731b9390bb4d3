// Package fsjudge implements judge hooks over a problem directory holding
// <id>.in and <id>.ans files, optionally zstd compressed as .zst.
package fsjudge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/grader/internal/checkers"
)

const (
	inputExt  = ".in"
	answerExt = ".ans"
	outputExt = ".out"
	zstdExt   = ".zst"
)

var ErrMissingTest = errors.New("test file not found")

type Config struct {
	ProblemDir string
	// WorkDir receives sample outputs and decompressed tests. It is
	// created if missing and removed by ClearRunSpace.
	WorkDir    string
	Comparator checkers.Comparator
	// CompileArtifacts are removed by ClearCompileSpace, typically the
	// executable and the compile log.
	CompileArtifacts []string
	Logger           *slog.Logger
}

type Workspace struct {
	problemDir       string
	workDir          string
	cmp              checkers.Comparator
	compileArtifacts []string
	logger           *slog.Logger

	mu        sync.Mutex
	artifacts mapset.Set[string]
	// answer path -> input path of the same test
	inputs map[string]string
}

func New(cfg Config) (*Workspace, error) {
	if cfg.ProblemDir == "" || cfg.WorkDir == "" {
		return nil, errors.New("problem dir and work dir are required")
	}
	if cfg.Comparator == nil {
		cfg.Comparator = checkers.Lines{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Workspace{
		problemDir:       cfg.ProblemDir,
		workDir:          cfg.WorkDir,
		cmp:              cfg.Comparator,
		compileArtifacts: cfg.CompileArtifacts,
		logger:           cfg.Logger,
		artifacts:        mapset.NewThreadUnsafeSet[string](),
		inputs:           make(map[string]string),
	}, nil
}

// CountTests returns how many consecutive tests starting at 0 exist.
func CountTests(problemDir string) int {
	n := 0
	for ; ; n++ {
		if _, ok := locate(problemDir, n, inputExt); !ok {
			return n
		}
	}
}

func locate(dir string, id int, ext string) (string, bool) {
	base := filepath.Join(dir, strconv.Itoa(id)+ext)
	for _, p := range []string{base, base + zstdExt} {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func (w *Workspace) TestInput(id int) (string, error) {
	return w.testFile(id, inputExt)
}

func (w *Workspace) StandardAnswer(id int) (string, error) {
	ans, err := w.testFile(id, answerExt)
	if err != nil {
		return "", err
	}
	in, err := w.testFile(id, inputExt)
	if err != nil {
		return "", err
	}
	w.mu.Lock()
	w.inputs[ans] = in
	w.mu.Unlock()
	return ans, nil
}

func (w *Workspace) testFile(id int, ext string) (string, error) {
	p, ok := locate(w.problemDir, id, ext)
	if !ok {
		return "", fmt.Errorf("%w: %d%s in %s", ErrMissingTest, id, ext, w.problemDir)
	}
	if filepath.Ext(p) != zstdExt {
		return p, nil
	}

	dst := filepath.Join(w.workDir, strconv.Itoa(id)+ext)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.artifacts.Contains(dst) {
		return dst, nil
	}
	if err := decompress(p, dst); err != nil {
		return "", fmt.Errorf("decompress %s: %w", p, err)
	}
	w.artifacts.Add(dst)
	w.logger.Debug("decompressed test file", "src", p, "dst", dst)
	return dst, nil
}

func decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer dec.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (w *Workspace) SampleOutputPath(id int) string {
	p := filepath.Join(w.workDir, strconv.Itoa(id)+outputExt)
	w.mu.Lock()
	w.artifacts.Add(p)
	w.mu.Unlock()
	return p
}

func (w *Workspace) CheckAnswer(standard, actual string) (bool, error) {
	w.mu.Lock()
	input := w.inputs[standard]
	w.mu.Unlock()
	return w.cmp.Compare(input, standard, actual)
}

func (w *Workspace) ClearCompileSpace() error {
	var errs []error
	for _, p := range w.compileArtifacts {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Workspace) ClearRunSpace() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, p := range w.artifacts.ToSlice() {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	w.artifacts.Clear()
	clear(w.inputs)
	if err := os.Remove(w.workDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("work dir not removed", "dir", w.workDir, "error", err)
	}
	return errors.Join(errs...)
}
