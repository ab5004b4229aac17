package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/doubles/internal/generator"
)

// resultHistory bounds how many responses Results keeps.
const resultHistory = 64

var (
	ErrNotReady   = errors.New("workers are not ready")
	ErrTerminated = errors.New("supervisor terminated")
)

// Factory builds the generator a worker runs. It is called once per worker
// at start-up.
type Factory func(ctx context.Context) (generator.Generator, error)

type state int

const (
	stateIdle state = iota
	stateStarting
	stateReady
	stateFailed
	stateTerminated
)

// Supervisor owns a fixed-size pool of generator workers. Its lifecycle is
// Start, Ready, any number of Dispatch calls, then Terminate.
type Supervisor struct {
	factory Factory
	size    int
	logger  *slog.Logger

	jobs   chan GenerateMsg
	events chan Message
	ready  chan struct{}
	done   chan struct{}

	readyOnce sync.Once
	termOnce  sync.Once
	cancel    context.CancelFunc
	group     *errgroup.Group

	mu      sync.Mutex
	state   state
	loaded  int
	loadErr error
	pending map[string]chan Response
	results []Response
	termErr error
}

// NewSupervisor creates a supervisor for size workers. It does not start
// them.
func NewSupervisor(factory Factory, size int, logger *slog.Logger) *Supervisor {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Supervisor{
		factory: factory,
		size:    size,
		logger:  logger,
		jobs:    make(chan GenerateMsg),
		events:  make(chan Message, size*2),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		pending: make(map[string]chan Response),
	}
}

// FromGenerator returns a Factory that hands every worker the same
// generator. Generators in this module hold no per-call state.
func FromGenerator(g generator.Generator) Factory {
	return func(context.Context) (generator.Generator, error) {
		return g, nil
	}
}

// FromStrategy returns a Factory that builds a fresh named generator for each
// worker. A fixed seed is offset by one per worker so parallel attempts
// explore different grids while staying reproducible.
func FromStrategy(name string, opts generator.Options) Factory {
	var next atomic.Int64
	return func(context.Context) (generator.Generator, error) {
		o := opts
		if o.Seed != 0 {
			o.Seed += next.Add(1) - 1
		}
		return generator.Get(name, o)
	}
}

// Size returns the number of workers.
func (s *Supervisor) Size() int {
	return s.size
}

// Start launches the workers. They stop when ctx is cancelled or Terminate
// is called.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateIdle:
	case stateTerminated:
		return ErrTerminated
	default:
		return fmt.Errorf("supervisor already started")
	}
	s.state = stateStarting

	ctx, s.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	g.Go(func() error {
		s.receive(gctx)
		return nil
	})
	for i := range s.size {
		g.Go(func() error {
			s.run(gctx, i)
			return nil
		})
	}

	s.logger.Info("starting workers", slog.Int("workers", s.size))
	return nil
}

// Ready blocks until every worker has loaded its generator, or returns the
// first load error.
func (s *Supervisor) Ready(ctx context.Context) error {
	s.mu.Lock()
	terminated := s.state == stateTerminated
	s.mu.Unlock()
	if terminated {
		return ErrTerminated
	}

	select {
	case <-s.ready:
	case <-s.done:
		return ErrTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Dispatch sends a request to the next free worker and waits for its
// response. If ctx ends first the response is still recorded in Results
// when it arrives.
func (s *Supervisor) Dispatch(ctx context.Context, req generator.Request) (Response, error) {
	s.mu.Lock()
	switch s.state {
	case stateReady:
	case stateTerminated:
		s.mu.Unlock()
		return Response{}, ErrTerminated
	default:
		s.mu.Unlock()
		return Response{}, ErrNotReady
	}
	id := uuid.NewString()
	reply := make(chan Response, 1)
	s.pending[id] = reply
	s.mu.Unlock()

	select {
	case s.jobs <- GenerateMsg{ID: id, Request: req}:
	case <-s.done:
		s.forget(id)
		return Response{}, ErrTerminated
	case <-ctx.Done():
		s.forget(id)
		return Response{}, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-s.done:
		s.forget(id)
		return Response{}, ErrTerminated
	case <-ctx.Done():
		s.forget(id)
		s.logger.Warn("caller gave up waiting for generation", slog.String("id", id))
		return Response{}, ctx.Err()
	}
}

// Results returns the most recent responses, oldest first. At most
// resultHistory are kept.
func (s *Supervisor) Results() []Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Response, len(s.results))
	copy(out, s.results)
	return out
}

// Terminate stops all workers and waits for them to exit. Calling it more
// than once is safe.
func (s *Supervisor) Terminate() error {
	s.termOnce.Do(func() {
		s.mu.Lock()
		s.state = stateTerminated
		s.mu.Unlock()
		close(s.done)

		if s.cancel == nil {
			return
		}
		s.cancel()
		err := s.group.Wait()
		s.mu.Lock()
		s.termErr = err
		s.mu.Unlock()
		s.logger.Info("workers stopped")
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

func (s *Supervisor) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// run is a single worker's loop.
func (s *Supervisor) run(ctx context.Context, worker int) {
	gen, err := s.factory(ctx)
	if err != nil {
		s.post(ctx, LoadErrorMsg{Worker: worker, Err: err.Error()})
		return
	}
	s.post(ctx, ReadyMsg{Worker: worker})

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			startedAt := time.Now()
			out := s.generate(ctx, worker, gen, job)
			s.post(ctx, outcomeMessage(job.ID, worker, out, time.Since(startedAt)))
		}
	}
}

// generate runs one job, turning a panic into a failed outcome so the worker
// keeps serving.
func (s *Supervisor) generate(ctx context.Context, worker int, gen generator.Generator, job GenerateMsg) (out generator.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generator panicked",
				slog.String("id", job.ID),
				slog.Int("worker", worker),
				slog.Any("panic", r),
			)
			out = generator.Failure(fmt.Errorf("generator panicked: %v", r))
		}
	}()
	return gen.Generate(ctx, job.Request)
}

func (s *Supervisor) post(ctx context.Context, msg Message) {
	select {
	case s.events <- msg:
	case <-ctx.Done():
	}
}

// receive handles worker messages until ctx ends.
func (s *Supervisor) receive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.events:
			if err := s.handle(msg); err != nil {
				s.logger.Error("dropping worker message", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Supervisor) handle(msg Message) error {
	switch m := msg.(type) {
	case ReadyMsg:
		s.logger.Info("worker ready", slog.Int("worker", m.Worker))
		s.mu.Lock()
		s.loaded++
		if s.loaded == s.size && s.state == stateStarting {
			s.state = stateReady
			s.readyOnce.Do(func() { close(s.ready) })
		}
		s.mu.Unlock()
	case LoadErrorMsg:
		s.logger.Error("worker failed to load", slog.Int("worker", m.Worker), slog.String("error", m.Err))
		s.mu.Lock()
		if s.loadErr == nil {
			s.loadErr = fmt.Errorf("worker %d: %s", m.Worker, m.Err)
		}
		if s.state == stateStarting {
			s.state = stateFailed
		}
		s.mu.Unlock()
		s.readyOnce.Do(func() { close(s.ready) })
	case SuccessMsg:
		s.logger.Info("generation finished",
			slog.String("id", m.ID),
			slog.Int("worker", m.Worker),
			slog.Duration("elapsed", m.Elapsed),
		)
		s.deliver(Response{ID: m.ID, Worker: m.Worker, Outcome: generator.Success(m.Schedule), Elapsed: m.Elapsed})
	case ErrorMsg:
		s.logger.Warn("generation failed",
			slog.String("id", m.ID),
			slog.Int("worker", m.Worker),
			slog.String("error", m.Message),
		)
		s.deliver(Response{ID: m.ID, Worker: m.Worker, Outcome: generator.Failure(errors.New(m.Message)), Elapsed: m.Elapsed})
	case GenerateMsg:
		return fmt.Errorf("unexpected %s message from a worker", m.Kind())
	default:
		return fmt.Errorf("unknown message kind %s", msg.Kind())
	}
	return nil
}

func (s *Supervisor) deliver(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, resp)
	if n := len(s.results); n > resultHistory {
		s.results = append(s.results[:0:0], s.results[n-resultHistory:]...)
	}
	if reply, ok := s.pending[resp.ID]; ok {
		reply <- resp
		delete(s.pending, resp.ID)
	}
}
