package checkers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/programme-lv/grader/internal/isolate"
	"github.com/puzpuzpuz/xsync/v3"
)

// Exit codes used by testlib checkers.
const (
	testlibOK           = 0
	testlibWrongAnswer  = 1
	testlibPresentation = 2
)

// Testlib runs a compiled testlib checker as
// checker <input> <output> <answer>.
type Testlib struct {
	Path string
	// Timeout defaults to 10 seconds.
	Timeout time.Duration
}

func (t *Testlib) Compare(input, standard, actual string) (bool, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, t.Path, input, actual, standard).CombinedOutput()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false, fmt.Errorf("run checker: %w", err)
	}
	switch exitErr.ExitCode() {
	case testlibWrongAnswer, testlibPresentation:
		return false, nil
	default:
		return false, fmt.Errorf("checker failed with exit code %d: %s", exitErr.ExitCode(), out)
	}
}

// TestlibSourcePrefix names a comparator built from checker source, as in
// testlib-src:checker.cpp.
const TestlibSourcePrefix = "testlib-src:"

// ErrNoTestlibCompiler is returned for testlib-src comparators when no
// checker compiler is configured.
var ErrNoTestlibCompiler = errors.New("no testlib checker compiler configured")

// Resolve is Parse that also accepts testlib-src:<checker source>, which
// is compiled with tc. tc may be nil.
func Resolve(ctx context.Context, name string, tc *TestlibCompiler) (Comparator, error) {
	path, ok := strings.CutPrefix(name, TestlibSourcePrefix)
	if !ok {
		return Parse(name)
	}
	if path == "" {
		return nil, fmt.Errorf("comparator %q: missing checker source", name)
	}
	if tc == nil {
		return nil, fmt.Errorf("comparator %q: %w", name, ErrNoTestlibCompiler)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checker source: %w", err)
	}
	return tc.Checker(ctx, source)
}

const (
	testlibSourceName = "checker.cpp"
	testlibHeaderName = "testlib.h"
	testlibExeName    = "checker"
)

var testlibCompileCmd = []string{"g++", "-std=c++17", "-O2", "-o", testlibExeName, testlibSourceName, "-I", "."}

// TestlibCompiler builds checkers inside an isolate box and caches the
// executables by source hash.
type TestlibCompiler struct {
	iso      *isolate.Isolate
	header   []byte
	cacheDir string

	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewTestlibCompiler(iso *isolate.Isolate, headerPath, cacheDir string) (*TestlibCompiler, error) {
	header, err := os.ReadFile(headerPath)
	if err != nil {
		return nil, fmt.Errorf("read testlib header: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create checker cache: %w", err)
	}
	return &TestlibCompiler{iso: iso, header: header, cacheDir: cacheDir, locks: xsync.NewMapOf[string, *sync.Mutex]()}, nil
}

// Checker returns a comparator for the checker source, compiling it on
// first use.
func (tc *TestlibCompiler) Checker(ctx context.Context, source []byte) (*Testlib, error) {
	sum := sha256.Sum256(source)
	key := hex.EncodeToString(sum[:])
	exe := filepath.Join(tc.cacheDir, key)

	l, _ := tc.locks.LoadOrStore(key, &sync.Mutex{})
	l.Lock()
	defer l.Unlock()

	if _, err := os.Stat(exe); err == nil {
		return &Testlib{Path: exe}, nil
	}
	if err := tc.compile(ctx, source, exe); err != nil {
		return nil, err
	}
	return &Testlib{Path: exe}, nil
}

func (tc *TestlibCompiler) compile(ctx context.Context, source []byte, exe string) error {
	box, err := tc.iso.NewBox(ctx)
	if err != nil {
		return err
	}
	defer box.Close()

	if err := box.AddFile(testlibSourceName, source, 0o644); err != nil {
		return err
	}
	if err := box.AddFile(testlibHeaderName, tc.header, 0o644); err != nil {
		return err
	}

	m, err := box.Command(testlibCompileCmd, isolate.DefaultConstraints(), isolate.RunOptions{
		Stderr: "compile.err",
		Env:    []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("compile checker: %w", err)
	}
	if m.Status != isolate.StatusOK || !box.HasFile(testlibExeName) {
		log, _ := box.GetFile("compile.err")
		return fmt.Errorf("checker compilation failed (status %q, exit code %d): %s", m.Status, m.ExitCode, log)
	}
	return box.CopyOut(testlibExeName, exe, 0o755)
}
