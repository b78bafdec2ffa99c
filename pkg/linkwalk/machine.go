package linkwalk

import (
	"context"
	"net/http"
	"time"

	"github.com/fivetwenty-io/linkwalk/pkg/media"
)

// State is a state of the walk state machine.
type State int

// Walk states. StateDone and StateFailed are terminal.
const (
	StateStart State = iota
	StateFetching
	StateResolving
	StateFinishing
	StateDone
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateFetching:
		return "fetching"
	case StateResolving:
		return "resolving"
	case StateFinishing:
		return "finishing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// BodyParser parses a response body selected by its Content-Type.
// *media.Registry implements it.
type BodyParser interface {
	Parse(contentType string, body []byte) (media.Document, error)
}

// Observer is notified of every state transition of every walk.
type Observer interface {
	ObserveTransition(ctx context.Context, t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, t Transition)

// ObserveTransition implements Observer.
func (f ObserverFunc) ObserveTransition(ctx context.Context, t Transition) {
	f(ctx, t)
}

// Action is the terminal HTTP action of a walk.
type Action struct {
	Method  string
	Body    []byte
	Headers http.Header
}

// Walk is the immutable description of one traversal.
type Walk struct {
	ID      string
	Root    string
	Steps   []Step
	Headers http.Header
	Action  Action
}

// walkContext is the mutable state of one in-flight walk. It is owned by a
// single Run call.
type walkContext struct {
	id       string
	state    State
	uri      string
	steps    []Step
	relation string
	headers  http.Header
	action   Action
	response *Response
	// viaEmbedded is set while the current response is an embedded resource;
	// hasSelf records whether that resource carried a self link.
	viaEmbedded bool
	hasSelf     bool
	trace       []StepTrace
	result      *Result
	err         error
}

func (wc *walkContext) fail(err error) State {
	wc.err = err

	return StateFailed
}

// afterStep picks the state that follows a consumed step.
func (wc *walkContext) afterStep(more State) State {
	if len(wc.steps) > 0 {
		return more
	}

	return StateFinishing
}

// Machine runs walks. A Machine holds no per-walk state and may run any
// number of walks concurrently.
type Machine struct {
	executor Executor
	resolver LinkResolver
	parser   BodyParser
	logger   Logger
	observer Observer
	policy   EmbeddedPolicy
}

// NewMachine creates a state machine from its collaborators. logger and
// observer may be nil.
func NewMachine(executor Executor, resolver LinkResolver, parser BodyParser, logger Logger, observer Observer, policy EmbeddedPolicy) *Machine {
	if logger == nil {
		logger = noopLogger{}
	}

	return &Machine{
		executor: executor,
		resolver: resolver,
		parser:   parser,
		logger:   logger,
		observer: observer,
		policy:   policy,
	}
}

// Run drives walk to a terminal state. Exactly one of the return values is
// non-nil.
func (m *Machine) Run(ctx context.Context, walk Walk) (*Result, error) {
	steps := make([]Step, len(walk.Steps))
	copy(steps, walk.Steps)

	wc := &walkContext{
		id:      walk.ID,
		state:   StateStart,
		uri:     walk.Root,
		steps:   steps,
		headers: walk.Headers,
		action:  walk.Action,
	}

	for !wc.state.Terminal() {
		var next State

		if err := ctx.Err(); err != nil {
			next = wc.fail(&TransportError{Method: http.MethodGet, URI: wc.uri, Err: err})
		} else {
			next = m.step(ctx, wc)
		}

		m.transition(ctx, wc, next)
	}

	if wc.state == StateFailed {
		return nil, wc.err
	}

	return wc.result, nil
}

// step performs the work of the current state and returns the next one.
func (m *Machine) step(ctx context.Context, wc *walkContext) State {
	switch wc.state {
	case StateStart:
		if len(wc.steps) == 0 {
			return StateFinishing
		}

		return StateFetching
	case StateFetching:
		return m.fetch(ctx, wc)
	case StateResolving:
		return m.resolve(wc)
	case StateFinishing:
		return m.finish(ctx, wc)
	default:
		return wc.state
	}
}

func (m *Machine) fetch(ctx context.Context, wc *walkContext) State {
	resp, err := m.executor.Execute(ctx, http.MethodGet, wc.uri, RequestOptions{Headers: wc.headers})
	if err != nil {
		if IsTransport(err) {
			return wc.fail(err)
		}

		return wc.fail(&TransportError{Method: http.MethodGet, URI: wc.uri, Err: err})
	}

	doc, err := m.parser.Parse(resp.ContentType(), resp.Body)
	if err != nil {
		return wc.fail(&ParseError{URI: wc.uri, ContentType: resp.ContentType(), Err: err})
	}

	resp.Document = doc
	wc.response = resp
	wc.viaEmbedded = false

	return StateResolving
}

func (m *Machine) resolve(wc *walkContext) State {
	step := wc.steps[0]
	wc.steps = wc.steps[1:]
	wc.relation = step.Relation

	doc := wc.response.Document
	if doc == nil {
		doc = media.Empty()
	}

	if embedded, ok := doc.Embedded(step.Relation); ok {
		return m.useEmbedded(wc, step, embedded)
	}

	uri, err := m.resolver.Resolve(doc, wc.uri, step)
	if err != nil {
		if !IsRelationNotFound(err) && !IsMalformedLink(err) {
			err = &MalformedLinkError{Relation: step.Relation, Err: err}
		}

		return wc.fail(err)
	}

	wc.uri = uri
	wc.viaEmbedded = false
	wc.trace = append(wc.trace, StepTrace{Relation: step.Relation, URI: uri})

	return wc.afterStep(StateFetching)
}

// useEmbedded makes an embedded resource the current response. Its self
// link, when present, becomes the current URI. Without one (EmbeddedTrust)
// the current URI stays the parent's, so relative links in the embedded
// resource resolve against the document that embedded it.
func (m *Machine) useEmbedded(wc *walkContext, step Step, embedded media.Document) State {
	self, err := m.resolver.Resolve(embedded, wc.uri, Step{Relation: "self"})

	switch {
	case err == nil:
		wc.uri = self
		wc.hasSelf = true
	case m.policy == EmbeddedRequireSelf:
		if IsRelationNotFound(err) {
			err = &MalformedLinkError{Relation: step.Relation, Err: ErrNoSelfLink}
		}

		return wc.fail(err)
	default:
		wc.hasSelf = false
	}

	parent := wc.response
	wc.response = &Response{
		StatusCode: parent.StatusCode,
		Headers:    parent.Headers.Clone(),
		Body:       embedded.Raw(),
		URI:        wc.uri,
		Document:   embedded,
	}
	wc.viaEmbedded = true
	wc.trace = append(wc.trace, StepTrace{Relation: step.Relation, URI: wc.uri, Embedded: true})

	return wc.afterStep(StateResolving)
}

func (m *Machine) finish(ctx context.Context, wc *walkContext) State {
	method := wc.action.Method
	if method == "" {
		method = http.MethodGet
	}

	if wc.viaEmbedded {
		if method == http.MethodGet {
			wc.result = &Result{WalkID: wc.id, Response: wc.response, Document: wc.response.Document, Steps: wc.trace}

			return StateDone
		}

		if !wc.hasSelf {
			return wc.fail(&MalformedLinkError{Relation: wc.relation, Err: ErrNoSelfLink})
		}
	}

	headers := wc.headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}

	for key, values := range wc.action.Headers {
		headers[key] = values
	}

	resp, err := m.executor.Execute(ctx, method, wc.uri, RequestOptions{Headers: headers, Body: wc.action.Body})
	if err != nil {
		return wc.fail(&TerminalActionError{Method: method, URI: wc.uri, Err: transportCause(err)})
	}

	doc, err := m.parser.Parse(resp.ContentType(), resp.Body)
	if err != nil {
		if method == http.MethodGet {
			return wc.fail(&ParseError{URI: wc.uri, ContentType: resp.ContentType(), Err: err})
		}

		m.logger.Warn("terminal response body not parsable", map[string]interface{}{
			"walk_id": wc.id,
			"method":  method,
			"uri":     wc.uri,
			"error":   err.Error(),
		})

		doc = nil
	}

	resp.Document = doc
	wc.result = &Result{WalkID: wc.id, Response: resp, Document: doc, Steps: wc.trace}

	return StateDone
}

func (m *Machine) transition(ctx context.Context, wc *walkContext, next State) {
	from := wc.state
	wc.state = next

	fields := map[string]interface{}{
		"walk_id": wc.id,
		"from":    from.String(),
		"to":      next.String(),
		"uri":     wc.uri,
	}

	if wc.relation != "" {
		fields["relation"] = wc.relation
	}

	if next == StateFailed {
		fields["error"] = wc.err.Error()
		m.logger.Error("walk failed", fields)
	} else {
		m.logger.Debug("walk transition", fields)
	}

	if m.observer != nil {
		m.observer.ObserveTransition(ctx, Transition{
			WalkID:   wc.id,
			From:     from,
			To:       next,
			URI:      wc.uri,
			Relation: wc.relation,
			Err:      wc.err,
			At:       time.Now(),
		})
	}
}
