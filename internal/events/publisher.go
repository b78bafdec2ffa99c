// Package events publishes walk state transitions to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Event is the wire form of a linkwalk.Transition.
type Event struct {
	WalkID   string    `json:"walk_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	URI      string    `json:"uri,omitempty"`
	Relation string    `json:"relation,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// NewEvent converts a transition to its wire form.
func NewEvent(t linkwalk.Transition) Event {
	event := Event{
		WalkID:   t.WalkID,
		From:     t.From.String(),
		To:       t.To.String(),
		URI:      t.URI,
		Relation: t.Relation,
		At:       t.At.UTC(),
	}

	if t.Err != nil {
		event.Error = t.Err.Error()
	}

	return event
}

// Publisher implements linkwalk.Observer by publishing every transition on
// "<prefix>.<state>".
type Publisher struct {
	conn   Conn
	prefix string
	logger linkwalk.Logger
	close  func() error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used to report publish failures.
func WithLogger(logger linkwalk.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher wraps an existing connection. An empty prefix uses the
// default subject prefix.
func NewPublisher(conn Conn, prefix string, opts ...Option) *Publisher {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = constants.DefaultEventsSubject
	}

	p := &Publisher{conn: conn, prefix: prefix}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Connect dials the NATS server at url and returns a publisher owning the
// connection.
func Connect(url, prefix string, opts ...Option) (*Publisher, error) {
	if url == "" {
		return nil, constants.ErrEventsURLRequired
	}

	conn, err := nats.Connect(url,
		nats.Name("linkwalk"),
		nats.Timeout(constants.EventsConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to events server: %w", err)
	}

	p := NewPublisher(conn, prefix, opts...)
	p.close = conn.Drain

	return p, nil
}

// Subject returns the subject a transition into state is published on.
func (p *Publisher) Subject(state linkwalk.State) string {
	return p.prefix + "." + state.String()
}

// ObserveTransition implements linkwalk.Observer. Failures are logged and
// never affect the walk.
func (p *Publisher) ObserveTransition(_ context.Context, t linkwalk.Transition) {
	data, err := json.Marshal(NewEvent(t))
	if err != nil {
		p.logFailure(t, err)

		return
	}

	err = p.conn.Publish(p.Subject(t.To), data)
	if err != nil {
		p.logFailure(t, err)
	}
}

// Close drains and closes a connection opened by Connect. It is a no-op for
// publishers created with NewPublisher.
func (p *Publisher) Close() error {
	if p.close == nil {
		return nil
	}

	err := p.close()
	if err != nil {
		return fmt.Errorf("failed to close events connection: %w", err)
	}

	return nil
}

func (p *Publisher) logFailure(t linkwalk.Transition, err error) {
	if p.logger == nil {
		return
	}

	p.logger.Warn("failed to publish walk event", map[string]interface{}{
		"walk_id": t.WalkID,
		"state":   t.To.String(),
		"error":   err.Error(),
	})
}
