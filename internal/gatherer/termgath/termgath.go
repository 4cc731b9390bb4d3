// Package termgath prints judging progress to a terminal.
package termgath

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/judge"
)

var (
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
	warn = color.New(color.FgYellow)
	info = color.New(color.FgCyan)
)

type TerminalGatherer struct {
	out       io.Writer
	StartedAt time.Time
}

var _ judge.Gatherer = (*TerminalGatherer)(nil)

// New prints to w, or to stdout when w is nil.
func New(w io.Writer) *TerminalGatherer {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalGatherer{out: w, StartedAt: time.Now()}
}

func (t *TerminalGatherer) StartJob(sub api.Submission) {
	t.StartedAt = time.Now()
	info.Fprintf(t.out, "== Judging %s (problem %s, %s, %d samples) ==\n",
		sub.SubmitID, sub.ProblemID, sub.Compiler, sub.SampleCount)
}

func (t *TerminalGatherer) StartCompile() {
	fmt.Fprintln(t.out, "-- Compilation started --")
}

func (t *TerminalGatherer) FinishCompile(status api.CompileStatus) {
	if status == api.CompileOK {
		good.Fprintln(t.out, "-- Compilation finished --")
		return
	}
	bad.Fprintln(t.out, "-- Compilation failed --")
}

func (t *TerminalGatherer) ReachSample(id int) {
	fmt.Fprintf(t.out, "-> Sample %d reached\n", id)
}

func (t *TerminalGatherer) FinishSample(id int, res api.SampleResult) {
	c := bad
	switch res.Verdict {
	case api.Accepted:
		c = good
	case api.Unknown:
		c = warn
	}
	fmt.Fprintf(t.out, "<- Sample %d: ", id)
	c.Fprintf(t.out, "%s", res.Verdict)
	fmt.Fprintf(t.out, " time=%dms mem=%dKiB\n", res.TimeUsedMs, res.MemUsedKiB)
}

func (t *TerminalGatherer) CompileError(msg string) {
	bad.Fprintln(t.out, "== Compilation error ==")
	if msg != "" {
		fmt.Fprintln(t.out, msg)
	}
}

func (t *TerminalGatherer) InternalError(err error) {
	warn.Fprintf(t.out, "== Internal error: %v ==\n", err)
}

func (t *TerminalGatherer) FinishNoError(res api.JudgeResult) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	c := bad
	if res.Accepted() {
		c = good
	}
	c.Fprintf(t.out, "== Finished in %s: %d/%d accepted ==\n", dur, countAccepted(res), len(res.Samples))
}

func countAccepted(res api.JudgeResult) int {
	n := 0
	for _, s := range res.Samples {
		if s.Verdict == api.Accepted {
			n++
		}
	}
	return n
}
