package natsgath

import (
	"log/slog"
	"sync"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/judge"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type natsGatherer struct {
	nc      Publisher
	subject string
	logger  *slog.Logger

	mu       sync.Mutex
	submitID string
}

var _ judge.Gatherer = (*natsGatherer)(nil)

func (s *natsGatherer) id() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitID
}

func (s *natsGatherer) StartJob(sub api.Submission) {
	s.mu.Lock()
	s.submitID = sub.SubmitID
	s.mu.Unlock()
	s.send(api.NewStartJob(sub))
}

func (s *natsGatherer) StartCompile() {
	s.send(api.NewStartCompile(s.id()))
}

func (s *natsGatherer) FinishCompile(status api.CompileStatus) {
	s.send(api.NewFinishCompile(s.id(), status))
}

func (s *natsGatherer) ReachSample(id int) {
	s.send(api.NewReachSample(s.id(), id))
}

func (s *natsGatherer) FinishSample(id int, res api.SampleResult) {
	s.send(api.NewFinishSample(s.id(), id, res))
}

func (s *natsGatherer) CompileError(msg string) {
	trimmed := trimStrToRect(msg, api.MaxStreamTextHeight, api.MaxStreamTextWidth)
	s.send(api.NewFinishJob(s.id(), &trimmed, true, false, nil))
}

func (s *natsGatherer) InternalError(err error) {
	msg := trimStrToRect(err.Error(), api.MaxStreamTextHeight, api.MaxStreamTextWidth)
	s.send(api.NewFinishJob(s.id(), &msg, false, true, nil))
}

func (s *natsGatherer) FinishNoError(res api.JudgeResult) {
	s.send(api.NewFinishJob(s.id(), nil, false, false, &res))
}
