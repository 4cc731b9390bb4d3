package api

import "time"

// MsgType tags streamed progress events.
type MsgType string

const (
	StartJobMsg      MsgType = "job_start"
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	ReachSampleMsg   MsgType = "sample_reach"
	FinishSampleMsg  MsgType = "sample_finish"
	FinishJobMsg     MsgType = "job_finish"
)

// Text in streamed events is trimmed to this rectangle.
const (
	MaxStreamTextHeight = 40
	MaxStreamTextWidth  = 80
)

type Header struct {
	SubmitID string  `json:"submit_id"`
	MsgType  MsgType `json:"msg_type"`
}

type StartJob struct {
	Header
	ProblemID   string `json:"problem_id"`
	Compiler    string `json:"compiler_name"`
	SampleCount int    `json:"sample_num"`
	StartedTime string `json:"started_time"`
}

type StartCompile struct {
	Header
}

type FinishCompile struct {
	Header
	Status CompileStatus `json:"status"`
}

type ReachSample struct {
	Header
	SampleID int `json:"sample_id"`
}

type FinishSample struct {
	Header
	SampleID int          `json:"sample_id"`
	Result   SampleResult `json:"result"`
}

type FinishJob struct {
	Header
	ErrorMessage  *string      `json:"error_message"`
	CompileError  bool         `json:"compile_error"`
	InternalError bool         `json:"internal_error"`
	Result        *JudgeResult `json:"result,omitempty"`
}

func NewHeader(submitID string, msgType MsgType) Header {
	return Header{SubmitID: submitID, MsgType: msgType}
}

func NewStartJob(sub Submission) StartJob {
	return StartJob{
		Header:      NewHeader(sub.SubmitID, StartJobMsg),
		ProblemID:   sub.ProblemID,
		Compiler:    sub.Compiler,
		SampleCount: sub.SampleCount,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartCompile(submitID string) StartCompile {
	return StartCompile{Header: NewHeader(submitID, StartCompileMsg)}
}

func NewFinishCompile(submitID string, status CompileStatus) FinishCompile {
	return FinishCompile{Header: NewHeader(submitID, FinishCompileMsg), Status: status}
}

func NewReachSample(submitID string, id int) ReachSample {
	return ReachSample{Header: NewHeader(submitID, ReachSampleMsg), SampleID: id}
}

func NewFinishSample(submitID string, id int, res SampleResult) FinishSample {
	return FinishSample{Header: NewHeader(submitID, FinishSampleMsg), SampleID: id, Result: res}
}

func NewFinishJob(submitID string, errMsg *string, compileErr, internalErr bool, res *JudgeResult) FinishJob {
	return FinishJob{
		Header:        NewHeader(submitID, FinishJobMsg),
		ErrorMessage:  errMsg,
		CompileError:  compileErr,
		InternalError: internalErr,
		Result:        res,
	}
}
