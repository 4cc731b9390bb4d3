package termgath

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/programme-lv/grader/api"
	"github.com/stretchr/testify/assert"
)

func TestOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	g := New(&buf)

	g.StartJob(api.Submission{SubmitID: "s1", ProblemID: "1000", Compiler: "gcc", SampleCount: 2})
	g.StartCompile()
	g.FinishCompile(api.CompileOK)
	g.ReachSample(0)
	g.FinishSample(0, api.SampleResult{Verdict: api.Accepted, TimeUsedMs: 15, MemUsedKiB: 900})
	g.ReachSample(1)
	g.FinishSample(1, api.SampleResult{Verdict: api.TimeLimitExceeded})
	g.FinishNoError(api.NewCompiledResult([]api.SampleResult{{Verdict: api.Accepted}, {Verdict: api.TimeLimitExceeded}}))

	out := buf.String()
	assert.Contains(t, out, "== Judging s1 (problem 1000, gcc, 2 samples) ==")
	assert.Contains(t, out, "<- Sample 0: AC time=15ms mem=900KiB")
	assert.Contains(t, out, "<- Sample 1: TLE time=0ms mem=0KiB")
	assert.Contains(t, out, "1/2 accepted")
}

func TestErrors(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	g := New(&buf)

	g.FinishCompile(api.CompileError)
	g.CompileError("main.c:1: error")
	g.InternalError(errors.New("judge exited"))

	out := buf.String()
	assert.Contains(t, out, "-- Compilation failed --")
	assert.Contains(t, out, "main.c:1: error")
	assert.Contains(t, out, "== Internal error: judge exited ==")
}
