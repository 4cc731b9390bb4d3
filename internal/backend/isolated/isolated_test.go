package isolated_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/backend/isolated"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/isolate"
	"github.com/programme-lv/grader/internal/isolate/isolatetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*isolated.Backend, *isolatetest.Fake, *isolate.Isolate) {
	t.Helper()
	fake := isolatetest.New(t)
	iso := isolate.New(isolate.Config{Binary: fake.Binary})
	reg, err := compilers.New(
		compilers.Compiler{Name: "sh", ID: 30, CompileCmd: []string{"cp", compilers.SourcePlaceholder, compilers.ExePlaceholder}},
		compilers.Compiler{Name: "fail", ID: 31, CompileCmd: []string{"sh", "-c", "echo 'line 1: nope' >&2; exit 1"}},
	)
	require.NoError(t, err)
	b, err := isolated.New(isolated.Config{Sandbox: iso, Compilers: reg})
	require.NoError(t, err)
	return b, fake, iso
}

func TestCompileAndRun(t *testing.T) {
	b, _, iso := newBackend(t)
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "prog.sh")
	exe := filepath.Join(dir, "prog")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\nread a b\necho $((a*b))\n"), 0o755))

	status, err := b.Compile(ctx, src, exe, 30, filepath.Join(dir, "err.log"))
	require.NoError(t, err)
	require.Equal(t, backend.CompileOK, status)
	assert.FileExists(t, exe)

	input := filepath.Join(dir, "0.in")
	output := filepath.Join(dir, "0.out")
	require.NoError(t, os.WriteFile(input, []byte("6 7\n"), 0o644))

	out, err := b.RunSample(ctx, exe, input, output, 1, 65536)
	require.NoError(t, err)
	assert.Equal(t, backend.RunOutcome{Fault: backend.AllNormal, TimeUsed: 12, MemUsed: 1500}, out)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(got))
	assert.Equal(t, 0, iso.InUse())
}

func TestCompileErrorCopiesLog(t *testing.T) {
	b, _, _ := newBackend(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")
	errLog := filepath.Join(dir, "err.log")
	require.NoError(t, os.WriteFile(src, []byte("int main( {"), 0o644))

	status, err := b.Compile(context.Background(), src, filepath.Join(dir, "main"), 31, errLog)
	require.NoError(t, err)
	assert.Equal(t, backend.CompileError, status)

	logged, err := os.ReadFile(errLog)
	require.NoError(t, err)
	assert.Equal(t, "line 1: nope\n", string(logged))
}

func TestCompileUnknownCompiler(t *testing.T) {
	b, fake, _ := newBackend(t)
	errLog := filepath.Join(t.TempDir(), "err.log")

	status, err := b.Compile(context.Background(), "main.c", "main", 99, errLog)
	require.NoError(t, err)
	assert.Equal(t, backend.CompileError, status)
	assert.Empty(t, fake.Calls(t))

	logged, err := os.ReadFile(errLog)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "unknown compiler id 99")
}

func TestRunSampleFaults(t *testing.T) {
	b, fake, _ := newBackend(t)
	dir := t.TempDir()
	exe := filepath.Join(dir, "prog")
	input := filepath.Join(dir, "0.in")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\ntrue\n"), 0o755))
	require.NoError(t, os.WriteFile(input, nil, 0o644))

	fake.NextMeta(t, "time:1.100\ntime-wall:1.300\nmax-rss:1000\nkilled:1\nstatus:TO\nmessage:Time limit exceeded\n")
	out, err := b.RunSample(context.Background(), exe, input, filepath.Join(dir, "0.out"), 1, 1024)
	require.NoError(t, err)
	assert.Equal(t, backend.TimeLimitExceeded, out.Fault)

	fake.NextMeta(t, "status:XX\nmessage:cannot create cgroup\n")
	_, err = b.RunSample(context.Background(), exe, input, filepath.Join(dir, "0.out"), 1, 1024)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		meta isolate.Metrics
		want backend.FaultCode
	}{
		{isolate.Metrics{Status: isolate.StatusOK}, backend.AllNormal},
		{isolate.Metrics{Status: isolate.StatusTimeout}, backend.TimeLimitExceeded},
		{isolate.Metrics{Status: isolate.StatusSignal, CgOOMKilled: true}, backend.MemoryLimitExceeded},
		{isolate.Metrics{Status: isolate.StatusSignal, ExitSignal: 25}, backend.OutputLimitExceeded},
		{isolate.Metrics{Status: isolate.StatusSignal, ExitSignal: 11}, backend.RuntimeError},
		{isolate.Metrics{Status: isolate.StatusRuntime, ExitCode: 1}, backend.RuntimeError},
	}
	for _, c := range cases {
		out, err := isolated.Outcome(&c.meta)
		require.NoError(t, err)
		assert.Equal(t, c.want, out.Fault, "status %q", c.meta.Status)
	}

	_, err := isolated.Outcome(&isolate.Metrics{Status: "ZZ"})
	assert.ErrorIs(t, err, backend.ErrProtocol)
}
