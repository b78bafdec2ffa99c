package linkwalk

import (
	"context"
	"errors"
	"net/http"
)

// Transport performs a single HTTP request. Implementations must not parse
// bodies; a non-nil error means no usable response was received.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// RequestOptions carries per-request headers and body.
type RequestOptions struct {
	Headers http.Header
	Body    []byte
}

// Executor performs one HTTP request and normalizes its outcome.
type Executor interface {
	Execute(ctx context.Context, method, uri string, opts RequestOptions) (*Response, error)
}

// TransportExecutor is the Executor backed by a Transport. It never retries,
// follows redirects, or parses bodies.
type TransportExecutor struct {
	transport Transport
	chain     *InterceptorChain
}

// NewTransportExecutor creates an executor. chain may be nil.
func NewTransportExecutor(transport Transport, chain *InterceptorChain) *TransportExecutor {
	return &TransportExecutor{transport: transport, chain: chain}
}

// Execute implements Executor. Failures are returned as *TransportError;
// responses with status >= 400 fail with a *StatusError inside it and are
// returned alongside the error.
func (e *TransportExecutor) Execute(ctx context.Context, method, uri string, opts RequestOptions) (*Response, error) {
	req := &Request{
		Method:  method,
		URI:     uri,
		Headers: opts.Headers.Clone(),
		Body:    opts.Body,
	}

	if req.Headers == nil {
		req.Headers = make(http.Header)
	}

	err := e.chain.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, &TransportError{Method: method, URI: uri, Err: err}
	}

	resp, err := e.transport.Send(ctx, req)
	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}

	if resp != nil {
		if resp.URI == "" {
			resp.URI = uri
		}

		if resp.Headers == nil {
			resp.Headers = make(http.Header)
		}

		if err == nil && resp.StatusCode >= http.StatusBadRequest {
			err = &StatusError{Response: resp}
		}
	}

	interceptErr := e.chain.ExecuteResponseInterceptors(ctx, req, resp, err)
	if err == nil {
		err = interceptErr
	}

	if err != nil {
		return resp, &TransportError{Method: method, URI: uri, Err: err}
	}

	return resp, nil
}

// transportCause returns the error a *TransportError wraps, or err itself.
func transportCause(err error) error {
	target := &TransportError{}
	if errors.As(err, &target) {
		return target.Err
	}

	return err
}
