// Package session implements the query session controller: the single owner of
// the request lifecycle state (idle, pending, succeeded, failed) for one user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dohr-michael/devhelper/clients/answer"
	"github.com/dohr-michael/devhelper/internal/events"
)

const (
	// DefaultTopK is the number of sources requested from the service.
	DefaultTopK = 5

	// FailureMessage replaces the answer whenever a request fails, whatever the cause.
	FailureMessage = "Something went wrong while fetching the answer."
)

var (
	errNoResponse = errors.New("answer service returned no response")
	errAborted    = errors.New("answer request aborted")
	errPanicked   = errors.New("answer request panicked")
)

// Asker sends one question to the remote answer service.
type Asker interface {
	Ask(ctx context.Context, req answer.Request) (*answer.Response, error)
}

// Controller owns the mutable state of a query session. It is safe for
// concurrent use. Overlapping submissions are allowed; only the most recent
// one may change the state once it resolves.
type Controller struct {
	asker  Asker
	topK   int
	bus    *events.Bus
	logger *slog.Logger

	mu             sync.Mutex
	seq            uint64
	state          State
	submittedQuery string
	answer         string
	rawSources     []answer.Source
}

// Option configures a Controller.
type Option func(*Controller)

// WithTopK sets the number of sources requested per question. Values <= 0 are ignored.
func WithTopK(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.topK = n
		}
	}
}

// WithBus publishes lifecycle events on bus.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates an idle controller backed by asker.
func New(asker Asker, opts ...Option) *Controller {
	c := &Controller{
		asker:  asker,
		topK:   DefaultTopK,
		logger: slog.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TopK returns the result-count hint sent with every question.
func (c *Controller) TopK() int {
	return c.topK
}

// Submission is one question in flight. It is created by Start and resolved by Run.
type Submission struct {
	ID    string
	Seq   uint64
	Query string
	TopK  int

	ctrl    *Controller
	started time.Time
	once    sync.Once
	outcome Outcome
}

// Start enters Pending, clears the previous answer and sources, and captures
// query as the submitted query. The returned submission has not contacted
// the service yet.
func (c *Controller) Start(query string) *Submission {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = StatePending
	c.answer = ""
	c.rawSources = nil
	c.submittedQuery = query
	c.mu.Unlock()

	s := &Submission{
		ID:      uuid.NewString(),
		Seq:     seq,
		Query:   query,
		TopK:    c.topK,
		ctrl:    c,
		started: time.Now(),
	}

	c.logger.Debug("query submitted", "submission", s.ID, "seq", seq, "top_k", s.TopK)
	c.publish(s, events.QuerySubmittedPayload{Seq: seq, Query: query, TopK: s.TopK})
	return s
}

// Submit is Start followed by Run.
func (c *Controller) Submit(ctx context.Context, query string) Outcome {
	return c.Start(query).Run(ctx)
}

// Run sends the question and applies the response. It blocks until the
// service answers, the transport fails or ctx is done. Calling Run more than
// once returns the first outcome without issuing another request.
func (s *Submission) Run(ctx context.Context) Outcome {
	s.once.Do(func() {
		s.outcome = s.run(ctx)
	})
	return s.outcome
}

func (s *Submission) run(ctx context.Context) (outcome Outcome) {
	c := s.ctrl
	settled := false

	// Pending must be released on every exit path, including a panicking
	// or goroutine-exiting asker.
	defer func() {
		if settled {
			return
		}
		err := errAborted
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanicked, r)
			c.logger.Error("answer request panicked", "submission", s.ID, "panic", r)
		}
		outcome = c.settle(s, nil, err)
	}()

	ctx = events.ContextWithSubmissionID(ctx, s.ID)
	resp, err := c.asker.Ask(ctx, answer.Request{Query: s.Query, TopK: s.TopK})
	if err == nil && resp == nil {
		err = errNoResponse
	}

	outcome = c.settle(s, resp, err)
	settled = true
	return outcome
}

// settle applies the result of s if s is still the latest submission.
func (c *Controller) settle(s *Submission, resp *answer.Response, err error) Outcome {
	elapsed := time.Since(s.started)

	c.mu.Lock()
	if s.Seq != c.seq {
		latest := c.seq
		c.mu.Unlock()

		c.logger.Debug("discarding stale response", "submission", s.ID, "seq", s.Seq, "latest", latest)
		c.publish(s, events.QueryDiscardedPayload{Seq: s.Seq, Latest: latest, Failed: err != nil})
		return OutcomeDiscarded
	}

	if err != nil {
		c.state = StateFailed
		c.answer = FailureMessage
		c.rawSources = nil
		c.mu.Unlock()

		c.logger.Debug("query failed", "submission", s.ID, "seq", s.Seq, "error", err)
		c.publish(s, events.QueryFailedPayload{
			Seq:      s.Seq,
			Kind:     failureKind(err),
			Error:    err.Error(),
			Duration: elapsed,
		})
		return OutcomeFailed
	}

	raw := make([]answer.Source, len(resp.Context))
	copy(raw, resp.Context)
	c.state = StateSucceeded
	c.answer = resp.Answer
	c.rawSources = raw
	valid := len(ValidSources(raw))
	c.mu.Unlock()

	c.logger.Debug("query answered", "submission", s.ID, "seq", s.Seq, "sources", len(raw), "valid_sources", valid)
	c.publish(s, events.QuerySucceededPayload{
		Seq:          s.Seq,
		AnswerLength: len(resp.Answer),
		RawSources:   len(raw),
		ValidSources: valid,
		Duration:     elapsed,
	})
	return OutcomeSucceeded
}

// Snapshot returns the current state with the display-safe source list.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:          c.state,
		SubmittedQuery: c.submittedQuery,
		Answer:         c.answer,
		Sources:        ValidSources(c.rawSources),
		Seq:            c.seq,
	}
}

// RawSources returns a copy of the unfiltered source list of the last applied response.
func (c *Controller) RawSources() []answer.Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw := make([]answer.Source, len(c.rawSources))
	copy(raw, c.rawSources)
	return raw
}

// Pending reports whether the latest submission has not resolved yet.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StatePending
}

func (c *Controller) publish(s *Submission, payload events.EventPayload) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.NewTypedEventWithSubmission(events.SourceSession, payload, s.ID))
}

func failureKind(err error) events.FailureKind {
	var te *answer.TransportError
	var pe *answer.ProtocolError
	switch {
	case errors.As(err, &te):
		return events.FailureTransport
	case errors.As(err, &pe):
		return events.FailureProtocol
	default:
		return events.FailureInternal
	}
}
