package judge_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/backend"
	"github.com/programme-lv/grader/internal/compilers"
	"github.com/programme-lv/grader/internal/judge"
	"github.com/programme-lv/grader/internal/judge/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type runCall struct {
	exe, input, output  string
	timeLimit, memLimit int
}

type fakeBackend struct {
	compileStatus backend.CompileStatus
	compileLog    string
	compileErr    error
	compilerIDs   []int

	outcomes map[string]backend.RunOutcome
	runErr   map[string]error
	runs     []runCall
}

func (f *fakeBackend) Compile(_ context.Context, src, exe string, compilerID int, errLog string) (backend.CompileStatus, error) {
	f.compilerIDs = append(f.compilerIDs, compilerID)
	if f.compileErr != nil {
		return backend.CompileError, f.compileErr
	}
	if f.compileLog != "" {
		if err := os.WriteFile(errLog, []byte(f.compileLog), 0o644); err != nil {
			return backend.CompileError, err
		}
	}
	return f.compileStatus, nil
}

func (f *fakeBackend) RunSample(_ context.Context, exe, input, output string, tl, ml int) (backend.RunOutcome, error) {
	f.runs = append(f.runs, runCall{exe, input, output, tl, ml})
	if err, ok := f.runErr[input]; ok {
		return backend.RunOutcome{}, err
	}
	return f.outcomes[input], nil
}

func newSubmission(t *testing.T, samples int) api.Submission {
	dir := t.TempDir()
	return api.Submission{
		ProblemID:   "1000",
		SubmitID:    "s-1",
		Compiler:    "gcc",
		SourcePath:  filepath.Join(dir, "main.c"),
		ExePath:     filepath.Join(dir, "main"),
		ErrLogPath:  filepath.Join(dir, "compile.log"),
		TimeLimit:   1,
		MemLimit:    20480,
		SampleCount: samples,
	}
}

func newJudge(t *testing.T, b backend.Backend, h judge.Hooks, opts ...judge.Option) *judge.Judge {
	reg, err := compilers.New()
	require.NoError(t, err)
	j, err := judge.New(b, h, reg, opts...)
	require.NoError(t, err)
	return j
}

func in(id int) string  { return fmt.Sprintf("/data/%d.in", id) }
func ans(id int) string { return fmt.Sprintf("/data/%d.ans", id) }

func expectSample(h *mocks.MockHooks, sub api.Submission, id int, same bool) {
	out := judge.DefaultSampleOutputPath(sub.ExePath, id)
	h.EXPECT().TestInput(id).Return(in(id), nil)
	h.EXPECT().StandardAnswer(id).Return(ans(id), nil)
	h.EXPECT().CheckAnswer(ans(id), out).Return(same, nil)
}

func expectFullCleanup(h *mocks.MockHooks) {
	gomock.InOrder(
		h.EXPECT().ClearCompileSpace().Return(nil).Times(1),
		h.EXPECT().ClearRunSpace().Return(nil).Times(1),
	)
}

func TestRun_AllSamplesAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 3)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.AllNormal, TimeUsed: 10, MemUsed: 1000},
		in(1): {Fault: backend.AllNormal, TimeUsed: 11, MemUsed: 1001},
		in(2): {Fault: backend.AllNormal, TimeUsed: 12, MemUsed: 1002},
	}}
	for id := 0; id < 3; id++ {
		expectSample(hooks, sub, id, true)
	}
	expectFullCleanup(hooks)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, api.CompileOK, res.Status)
	assert.Equal(t, []api.SampleResult{
		{Verdict: api.Accepted, TimeUsedMs: 10, MemUsedKiB: 1000},
		{Verdict: api.Accepted, TimeUsedMs: 11, MemUsedKiB: 1001},
		{Verdict: api.Accepted, TimeUsedMs: 12, MemUsedKiB: 1002},
	}, res.Samples)
	assert.True(t, res.Accepted())

	require.Len(t, b.runs, 3)
	for id, call := range b.runs {
		assert.Equal(t, sub.ExePath, call.exe)
		assert.Equal(t, in(id), call.input)
		assert.Equal(t, sub.TimeLimit, call.timeLimit)
		assert.Equal(t, sub.MemLimit, call.memLimit)
	}
	assert.Equal(t, []int{0}, b.compilerIDs)
}

func TestRun_CompileErrorSkipsSamples(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 3)

	b := &fakeBackend{compileStatus: backend.CompileError, compileLog: "syntax error at line 4"}
	hooks.EXPECT().ClearCompileSpace().Return(nil).Times(1)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, api.NewCompileErrorResult("syntax error at line 4"), res)
	assert.Empty(t, b.runs)
}

func TestRun_CompileErrorWithoutLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 2)

	b := &fakeBackend{compileStatus: backend.CompileError}
	hooks.EXPECT().ClearCompileSpace().Return(nil)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, api.CompileError, res.Status)
	assert.Equal(t, "", res.Message)
}

func TestRun_CompileLogIsTruncated(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)

	log := strings.Repeat("error: expected ';'\n", 500)
	b := &fakeBackend{compileStatus: backend.CompileError, compileLog: log}
	hooks.EXPECT().ClearCompileSpace().Return(nil)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Len(t, res.Message, api.MaxErrorMsgLength)
	assert.Equal(t, log[:api.MaxErrorMsgLength], res.Message)
}

func TestRun_TimeoutDoesNotStopOtherSamples(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 3)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.AllNormal, TimeUsed: 5, MemUsed: 700},
		in(1): {Fault: backend.TimeLimitExceeded, TimeUsed: 1500, MemUsed: 900},
		in(2): {Fault: backend.AllNormal, TimeUsed: 6, MemUsed: 710},
	}}
	expectSample(hooks, sub, 0, true)
	hooks.EXPECT().TestInput(1).Return(in(1), nil)
	expectSample(hooks, sub, 2, true)
	expectFullCleanup(hooks)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, res.Samples, 3)
	assert.Equal(t, api.SampleResult{Verdict: api.Accepted, TimeUsedMs: 5, MemUsedKiB: 700}, res.Samples[0])
	assert.Equal(t, api.SampleResult{Verdict: api.TimeLimitExceeded}, res.Samples[1])
	assert.Equal(t, api.SampleResult{Verdict: api.Accepted, TimeUsedMs: 6, MemUsedKiB: 710}, res.Samples[2])
	assert.Len(t, b.runs, 3)
}

func TestRun_WrongAnswerHasNoUsage(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.AllNormal, TimeUsed: 42, MemUsed: 4242},
	}}
	expectSample(hooks, sub, 0, false)
	expectFullCleanup(hooks)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []api.SampleResult{{Verdict: api.WrongAnswer}}, res.Samples)
}

func TestRun_FaultsMapToVerdicts(t *testing.T) {
	faults := []struct {
		code backend.FaultCode
		want api.Verdict
	}{
		{backend.TimeLimitExceeded, api.TimeLimitExceeded},
		{backend.MemoryLimitExceeded, api.MemoryLimitExceeded},
		{backend.RuntimeError, api.RuntimeError},
		{backend.OutputLimitExceeded, api.OutputLimitExceeded},
		{backend.FaultCode(42), api.Unknown},
		{backend.FaultCode(-7), api.Unknown},
	}

	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, len(faults))

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{}}
	for id, f := range faults {
		b.outcomes[in(id)] = backend.RunOutcome{Fault: f.code, TimeUsed: 999, MemUsed: 999}
		hooks.EXPECT().TestInput(id).Return(in(id), nil)
	}
	expectFullCleanup(hooks)

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	require.Len(t, res.Samples, len(faults))
	for id, f := range faults {
		assert.Equal(t, api.SampleResult{Verdict: f.want}, res.Samples[id], "sample %d", id)
	}
}

func TestRun_ZeroSamples(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 0)

	expectFullCleanup(hooks)

	res, err := newJudge(t, &fakeBackend{compileStatus: backend.CompileOK}, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, api.CompileOK, res.Status)
	assert.NotNil(t, res.Samples)
	assert.Empty(t, res.Samples)
}

func TestRun_UnknownCompilerPassesInvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)
	sub.Compiler = "cobol"

	b := &fakeBackend{compileStatus: backend.CompileError}
	hooks.EXPECT().ClearCompileSpace().Return(nil)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res, err := newJudge(t, b, hooks, judge.WithLogger(logger)).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, api.CompileError, res.Status)
	assert.Equal(t, []int{compilers.InvalidID}, b.compilerIDs)
	assert.Contains(t, logs.String(), `msg="unknown compiler" compiler=cobol known="[clang clang++ g++ gcc]"`)
}

func TestRun_ProtocolErrorIsSurfaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 2)

	b := &fakeBackend{
		compileStatus: backend.CompileOK,
		outcomes:      map[string]backend.RunOutcome{in(0): {Fault: backend.AllNormal}},
		runErr:        map[string]error{in(1): &backend.ProtocolError{Raw: "0, 12,300", Reason: "malformed field"}},
	}
	expectSample(hooks, sub, 0, true)
	hooks.EXPECT().TestInput(1).Return(in(1), nil)
	expectFullCleanup(hooks)

	_, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrProtocol)

	var perr *backend.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "0, 12,300", perr.Raw)
}

func TestRun_HookFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)

	hooks.EXPECT().TestInput(0).Return("", errors.New("no such test"))
	expectFullCleanup(hooks)

	_, err := newJudge(t, &fakeBackend{compileStatus: backend.CompileOK}, hooks).Run(context.Background(), sub)
	assert.ErrorIs(t, err, judge.ErrHook)
}

func TestRun_BackendCompileFailureIsInfrastructureError(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)

	hooks.EXPECT().ClearCompileSpace().Return(nil)

	b := &fakeBackend{compileErr: fmt.Errorf("%w: engine missing", backend.ErrUnavailable)}
	_, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	assert.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Empty(t, b.runs)
}

func TestRun_CleanupFailureKeepsVerdict(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 1)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.RuntimeError},
	}}
	hooks.EXPECT().TestInput(0).Return(in(0), nil)
	hooks.EXPECT().ClearCompileSpace().Return(nil)
	hooks.EXPECT().ClearRunSpace().Return(errors.New("device busy"))

	res, err := newJudge(t, b, hooks).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []api.SampleResult{{Verdict: api.RuntimeError}}, res.Samples)
}

type customOutputHooks struct {
	*mocks.MockHooks
	*mocks.MockOutputPather
}

func TestRun_HooksChooseOutputPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := mocks.NewMockHooks(ctrl)
	pather := mocks.NewMockOutputPather(ctrl)
	sub := newSubmission(t, 1)

	pather.EXPECT().SampleOutputPath(0).Return("/work/custom_0.txt")
	base.EXPECT().TestInput(0).Return(in(0), nil)
	base.EXPECT().StandardAnswer(0).Return(ans(0), nil)
	base.EXPECT().CheckAnswer(ans(0), "/work/custom_0.txt").Return(true, nil)
	expectFullCleanup(base)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.AllNormal, TimeUsed: 1, MemUsed: 2},
	}}
	res, err := newJudge(t, b, customOutputHooks{base, pather}).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, api.Accepted, res.Samples[0].Verdict)
	assert.Equal(t, "/work/custom_0.txt", b.runs[0].output)
}

func TestRun_InvalidSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, -1)

	_, err := newJudge(t, &fakeBackend{}, hooks).Run(context.Background(), sub)
	assert.ErrorIs(t, err, api.ErrInvalidSubmission)
}

type recordingGatherer struct {
	events []string
}

func (r *recordingGatherer) StartJob(sub api.Submission) {
	r.events = append(r.events, "start:"+sub.SubmitID)
}
func (r *recordingGatherer) StartCompile() { r.events = append(r.events, "compile") }
func (r *recordingGatherer) FinishCompile(s api.CompileStatus) {
	r.events = append(r.events, "compiled:"+string(s))
}
func (r *recordingGatherer) ReachSample(id int) {
	r.events = append(r.events, fmt.Sprintf("reach:%d", id))
}
func (r *recordingGatherer) FinishSample(id int, res api.SampleResult) {
	r.events = append(r.events, fmt.Sprintf("finish:%d:%s", id, res.Verdict))
}
func (r *recordingGatherer) CompileError(msg string)       { r.events = append(r.events, "ce:"+msg) }
func (r *recordingGatherer) InternalError(err error)       { r.events = append(r.events, "ise") }
func (r *recordingGatherer) FinishNoError(api.JudgeResult) { r.events = append(r.events, "done") }

func TestRun_GathererSeesEveryStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 2)

	b := &fakeBackend{compileStatus: backend.CompileOK, outcomes: map[string]backend.RunOutcome{
		in(0): {Fault: backend.AllNormal},
		in(1): {Fault: backend.MemoryLimitExceeded},
	}}
	expectSample(hooks, sub, 0, true)
	hooks.EXPECT().TestInput(1).Return(in(1), nil)
	expectFullCleanup(hooks)

	g := &recordingGatherer{}
	_, err := newJudge(t, b, hooks, judge.WithGatherer(g)).Run(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start:s-1", "compile", "compiled:COMPILE_OK",
		"reach:0", "finish:0:AC", "reach:1", "finish:1:MLE", "done",
	}, g.events)
}

func TestRun_GeneratesSubmitID(t *testing.T) {
	ctrl := gomock.NewController(t)
	hooks := mocks.NewMockHooks(ctrl)
	sub := newSubmission(t, 0)
	sub.SubmitID = ""
	expectFullCleanup(hooks)

	g := &recordingGatherer{}
	_, err := newJudge(t, &fakeBackend{}, hooks, judge.WithGatherer(g)).Run(context.Background(), sub)
	require.NoError(t, err)
	require.NotEmpty(t, g.events)
	assert.Greater(t, len(g.events[0]), len("start:"))
}

func TestCompileErrorMessage(t *testing.T) {
	msg, err := judge.CompileErrorMessage(filepath.Join(t.TempDir(), "missing.log"))
	require.NoError(t, err)
	assert.Equal(t, "", msg)

	path := filepath.Join(t.TempDir(), "err.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 3*api.MaxErrorMsgLength)), 0o644))
	msg, err = judge.CompileErrorMessage(path)
	require.NoError(t, err)
	assert.Len(t, msg, api.MaxErrorMsgLength)
}
