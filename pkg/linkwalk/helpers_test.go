package linkwalk_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/stretchr/testify/require"
)

// Test static errors.
var (
	errNoRoute   = errors.New("no route configured")
	errTestError = errors.New("test error")
	errOnlyPost  = errors.New("GET is not implemented for this URI, only POST")
)

const (
	rootURI   = "http://api.io"
	getURI    = rootURI + "/link/to/resource"
	postURI   = rootURI + "/post/something/here"
	putURI    = rootURI + "/put/something/here"
	patchURI  = rootURI + "/patch/me"
	deleteURI = rootURI + "/delete/me"

	rootDocument = `{
		"get_link": "http://api.io/link/to/resource",
		"post_link": "http://api.io/post/something/here",
		"put_link": "http://api.io/put/something/here",
		"patch_link": "http://api.io/patch/me",
		"delete_link": "http://api.io/delete/me"
	}`
	resultDocument = `{"result": "success"}`
)

type recordedCall struct {
	Method  string
	URI     string
	Headers http.Header
	Body    []byte
}

type route struct {
	resp *linkwalk.Response
	err  error
}

// fakeExecutor serves canned responses keyed by "METHOD URI" and records
// every call it receives.
type fakeExecutor struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []recordedCall
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{routes: make(map[string]route)}
}

func (f *fakeExecutor) on(method, uri string, resp *linkwalk.Response, err error) *fakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.routes[method+" "+uri] = route{resp: resp, err: err}

	return f
}

func (f *fakeExecutor) Execute(_ context.Context, method, uri string, opts linkwalk.RequestOptions) (*linkwalk.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, recordedCall{Method: method, URI: uri, Headers: opts.Headers.Clone(), Body: opts.Body})

	r, ok := f.routes[method+" "+uri]
	if !ok {
		return nil, &linkwalk.TransportError{Method: method, URI: uri, Err: errNoRoute}
	}

	if r.err != nil {
		return nil, &linkwalk.TransportError{Method: method, URI: uri, Err: r.err}
	}

	resp := *r.resp
	resp.URI = uri

	return &resp, nil
}

func (f *fakeExecutor) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeExecutor) targets() []string {
	calls := f.recorded()
	targets := make([]string, 0, len(calls))

	for _, c := range calls {
		targets = append(targets, c.Method+" "+c.URI)
	}

	return targets
}

func respond(status int, contentType, body string) *linkwalk.Response {
	return &linkwalk.Response{
		StatusCode: status,
		Headers:    http.Header{"Content-Type": []string{contentType}},
		Body:       []byte(body),
	}
}

func jsonResponse(body string) *linkwalk.Response {
	return respond(http.StatusOK, "application/json", body)
}

func halResponse(body string) *linkwalk.Response {
	return respond(http.StatusOK, "application/hal+json", body)
}

func newTestClient(t *testing.T, executor linkwalk.Executor, opts ...linkwalk.Option) *linkwalk.Client {
	t.Helper()

	client, err := linkwalk.New(append([]linkwalk.Option{linkwalk.WithExecutor(executor)}, opts...)...)
	require.NoError(t, err)

	return client
}

func wait(t *testing.T, f *linkwalk.Future) (*linkwalk.Result, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	select {
	case <-f.Done():
	case <-ctx.Done():
		t.Fatal("walk did not settle")
	}

	return f.Wait(ctx)
}

func resultValue(t *testing.T, res *linkwalk.Result) map[string]interface{} {
	t.Helper()

	require.NotNil(t, res)
	require.NotNil(t, res.Document)

	value, ok := res.Document.Value().(map[string]interface{})
	require.True(t, ok)

	return value
}
