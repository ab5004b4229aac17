package worker

import (
	"time"

	"github.com/derekprior/doubles/internal/generator"
	"github.com/derekprior/doubles/internal/schedule"
)

// MessageKind identifies a message exchanged between the supervisor and its
// workers.
type MessageKind int

const (
	KindGenerate MessageKind = iota
	KindReady
	KindLoadError
	KindGenerationSuccess
	KindGenerationError
)

func (k MessageKind) String() string {
	switch k {
	case KindGenerate:
		return "GENERATE_MATCHES"
	case KindReady:
		return "WORKER_READY"
	case KindLoadError:
		return "LOAD_ERROR"
	case KindGenerationSuccess:
		return "GENERATION_SUCCESS"
	case KindGenerationError:
		return "GENERATION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Message is implemented only by the payload types in this file.
type Message interface {
	Kind() MessageKind
	sealed()
}

// GenerateMsg asks a worker to run the generator.
type GenerateMsg struct {
	ID      string
	Request generator.Request
}

// ReadyMsg is sent once a worker has built its generator.
type ReadyMsg struct {
	Worker int
}

// LoadErrorMsg is sent when a worker could not build its generator.
type LoadErrorMsg struct {
	Worker int
	Err    string
}

// SuccessMsg carries a generated schedule back to the supervisor.
type SuccessMsg struct {
	ID       string
	Worker   int
	Schedule schedule.Schedule
	Elapsed  time.Duration
}

// ErrorMsg carries a generation failure back to the supervisor.
type ErrorMsg struct {
	ID      string
	Worker  int
	Message string
	Elapsed time.Duration
}

func (GenerateMsg) Kind() MessageKind  { return KindGenerate }
func (ReadyMsg) Kind() MessageKind     { return KindReady }
func (LoadErrorMsg) Kind() MessageKind { return KindLoadError }
func (SuccessMsg) Kind() MessageKind   { return KindGenerationSuccess }
func (ErrorMsg) Kind() MessageKind     { return KindGenerationError }

func (GenerateMsg) sealed()  {}
func (ReadyMsg) sealed()     {}
func (LoadErrorMsg) sealed() {}
func (SuccessMsg) sealed()   {}
func (ErrorMsg) sealed()     {}

// Response is the result of one dispatched request.
type Response struct {
	ID      string
	Worker  int
	Outcome generator.Outcome
	Elapsed time.Duration
}

func outcomeMessage(id string, worker int, out generator.Outcome, elapsed time.Duration) Message {
	if out.OK() {
		return SuccessMsg{ID: id, Worker: worker, Schedule: out.Result, Elapsed: elapsed}
	}
	return ErrorMsg{ID: id, Worker: worker, Message: out.Message, Elapsed: elapsed}
}
