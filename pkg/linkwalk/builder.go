package linkwalk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

// RequestBuilder accumulates the steps, template parameters and headers of
// one walk. A terminal action (Get, Post, Put, Patch, Delete) starts the
// walk; a builder can be used for exactly one terminal action.
type RequestBuilder struct {
	client  *Client
	root    string
	steps   []Step
	params  Params
	headers http.Header
	used    atomic.Bool
}

func newRequestBuilder(client *Client, root string) *RequestBuilder {
	return &RequestBuilder{
		client:  client,
		root:    root,
		headers: client.headers.Clone(),
	}
}

// Walk appends one step per relation.
func (b *RequestBuilder) Walk(relations ...string) *RequestBuilder {
	for _, rel := range relations {
		b.steps = append(b.steps, Step{Relation: rel})
	}

	return b
}

// WalkWithParams appends a step whose link template is expanded with params.
func (b *RequestBuilder) WalkWithParams(relation string, params Params) *RequestBuilder {
	b.steps = append(b.steps, Step{Relation: relation, Params: params.merge(nil)})

	return b
}

// WithTemplateParams sets parameters used by every step. Parameters given to
// WalkWithParams take precedence.
func (b *RequestBuilder) WithTemplateParams(params Params) *RequestBuilder {
	b.params = b.params.merge(params)

	return b
}

// WithHeader sets a header on every request of the walk.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers.Set(key, value)

	return b
}

// WithHeaders merges headers into every request of the walk.
func (b *RequestBuilder) WithHeaders(headers http.Header) *RequestBuilder {
	for key, values := range headers {
		b.headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	return b
}

// Steps returns a copy of the steps accumulated so far.
func (b *RequestBuilder) Steps() []Step {
	steps := make([]Step, len(b.steps))
	copy(steps, b.steps)

	return steps
}

// Get walks the steps and GETs the final resource.
func (b *RequestBuilder) Get(ctx context.Context) *Future {
	return b.start(ctx, Action{Method: http.MethodGet})
}

// Post walks the steps and POSTs body to the final URI.
func (b *RequestBuilder) Post(ctx context.Context, body interface{}) *Future {
	return b.startWithBody(ctx, http.MethodPost, body)
}

// Put walks the steps and PUTs body to the final URI.
func (b *RequestBuilder) Put(ctx context.Context, body interface{}) *Future {
	return b.startWithBody(ctx, http.MethodPut, body)
}

// Patch walks the steps and PATCHes body to the final URI.
func (b *RequestBuilder) Patch(ctx context.Context, body interface{}) *Future {
	return b.startWithBody(ctx, http.MethodPatch, body)
}

// Delete walks the steps and DELETEs the final resource.
func (b *RequestBuilder) Delete(ctx context.Context) *Future {
	return b.start(ctx, Action{Method: http.MethodDelete})
}

func (b *RequestBuilder) startWithBody(ctx context.Context, method string, body interface{}) *Future {
	f := newFuture()
	if !b.claim(f) {
		return f
	}

	data, contentType, err := encodeBody(body)
	if err != nil {
		f.settle(nil, &TerminalActionError{Method: method, URI: b.root, Err: err})

		return f
	}

	action := Action{Method: method, Body: data}
	if contentType != "" {
		action.Headers = http.Header{"Content-Type": []string{contentType}}
	}

	b.run(ctx, action, f)

	return f
}

func (b *RequestBuilder) start(ctx context.Context, action Action) *Future {
	f := newFuture()
	if b.claim(f) {
		b.run(ctx, action, f)
	}

	return f
}

// claim marks the builder used. It settles f and reports false when the
// builder was already used or has no root.
func (b *RequestBuilder) claim(f *Future) bool {
	if !b.used.CompareAndSwap(false, true) {
		f.settle(nil, ErrBuilderUsed)

		return false
	}

	if b.root == "" {
		f.settle(nil, ErrRootRequired)

		return false
	}

	return true
}

// run starts the walk in its own goroutine and settles f with its outcome.
func (b *RequestBuilder) run(ctx context.Context, action Action, f *Future) {
	steps := make([]Step, len(b.steps))
	for i, step := range b.steps {
		steps[i] = Step{Relation: step.Relation, Params: b.params.merge(step.Params)}
	}

	walk := Walk{
		ID:      uuid.NewString(),
		Root:    b.root,
		Steps:   steps,
		Headers: b.headers.Clone(),
		Action:  action,
	}

	go func() {
		res, err := b.client.machine.Run(ctx, walk)
		f.settle(res, err)
	}()
}

// encodeBody sends []byte and string bodies verbatim and JSON-encodes
// anything else.
func encodeBody(body interface{}) ([]byte, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return v, "", nil
	case string:
		return []byte(v), "", nil
	case json.RawMessage:
		return v, "application/json", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}

		return data, "application/json", nil
	}
}
