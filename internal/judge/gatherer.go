package judge

import "github.com/programme-lv/grader/api"

// Gatherer observes the pipeline as it progresses.
type Gatherer interface {
	StartJob(sub api.Submission)

	StartCompile()
	FinishCompile(status api.CompileStatus)

	ReachSample(id int)
	FinishSample(id int, res api.SampleResult)

	CompileError(msg string)
	InternalError(err error)
	FinishNoError(res api.JudgeResult)
}

type nopGatherer struct{}

func (nopGatherer) StartJob(api.Submission)            {}
func (nopGatherer) StartCompile()                      {}
func (nopGatherer) FinishCompile(api.CompileStatus)    {}
func (nopGatherer) ReachSample(int)                    {}
func (nopGatherer) FinishSample(int, api.SampleResult) {}
func (nopGatherer) CompileError(string)                {}
func (nopGatherer) InternalError(error)                {}
func (nopGatherer) FinishNoError(api.JudgeResult)      {}

// Multi fans events out to several gatherers in order.
type Multi []Gatherer

func (m Multi) StartJob(sub api.Submission) {
	for _, g := range m {
		g.StartJob(sub)
	}
}

func (m Multi) StartCompile() {
	for _, g := range m {
		g.StartCompile()
	}
}

func (m Multi) FinishCompile(status api.CompileStatus) {
	for _, g := range m {
		g.FinishCompile(status)
	}
}

func (m Multi) ReachSample(id int) {
	for _, g := range m {
		g.ReachSample(id)
	}
}

func (m Multi) FinishSample(id int, res api.SampleResult) {
	for _, g := range m {
		g.FinishSample(id, res)
	}
}

func (m Multi) CompileError(msg string) {
	for _, g := range m {
		g.CompileError(msg)
	}
}

func (m Multi) InternalError(err error) {
	for _, g := range m {
		g.InternalError(err)
	}
}

func (m Multi) FinishNoError(res api.JudgeResult) {
	for _, g := range m {
		g.FinishNoError(res)
	}
}
