package linkwalk_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInterceptor = errors.New("interceptor refused")

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTransportExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		var seen *linkwalk.Request

		transport := linkwalk.TransportFunc(func(_ context.Context, req *linkwalk.Request) (*linkwalk.Response, error) {
			seen = req

			return &linkwalk.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
		})

		executor := linkwalk.NewTransportExecutor(transport, nil)

		resp, err := executor.Execute(context.Background(), http.MethodPost, "http://api.io/x", linkwalk.RequestOptions{
			Headers: http.Header{"X-Custom-Header": []string{"custom-value"}},
			Body:    []byte(`{"a":1}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "http://api.io/x", resp.URI)
		assert.NotNil(t, resp.Headers)

		require.NotNil(t, seen)
		assert.Equal(t, http.MethodPost, seen.Method)
		assert.Equal(t, "custom-value", seen.Headers.Get("X-Custom-Header"))
		assert.Equal(t, []byte(`{"a":1}`), seen.Body)
	})

	t.Run("transport error is wrapped verbatim", func(t *testing.T) {
		t.Parallel()

		transport := linkwalk.TransportFunc(func(context.Context, *linkwalk.Request) (*linkwalk.Response, error) {
			return nil, errTestError
		})

		_, err := linkwalk.NewTransportExecutor(transport, nil).Execute(context.Background(), http.MethodGet, "http://api.io", linkwalk.RequestOptions{})

		transportErr := &linkwalk.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, errTestError, transportErr.Err)
		assert.Equal(t, http.MethodGet, transportErr.Method)
	})

	t.Run("error status is a failure carrying the response", func(t *testing.T) {
		t.Parallel()

		transport := linkwalk.TransportFunc(func(context.Context, *linkwalk.Request) (*linkwalk.Response, error) {
			return &linkwalk.Response{StatusCode: http.StatusNotFound, Body: []byte("missing")}, nil
		})

		resp, err := linkwalk.NewTransportExecutor(transport, nil).Execute(context.Background(), http.MethodGet, "http://api.io/gone", linkwalk.RequestOptions{})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, http.StatusNotFound, linkwalk.StatusCode(err))
		assert.Contains(t, err.Error(), "unexpected status 404 from http://api.io/gone")
	})

	t.Run("nil response without error", func(t *testing.T) {
		t.Parallel()

		transport := linkwalk.TransportFunc(func(context.Context, *linkwalk.Request) (*linkwalk.Response, error) {
			return nil, nil //nolint:nilnil // exercising a misbehaving transport
		})

		_, err := linkwalk.NewTransportExecutor(transport, nil).Execute(context.Background(), http.MethodGet, "http://api.io", linkwalk.RequestOptions{})
		require.ErrorIs(t, err, linkwalk.ErrEmptyResponse)
	})

	t.Run("request interceptor failure skips the transport", func(t *testing.T) {
		t.Parallel()

		called := false
		transport := linkwalk.TransportFunc(func(context.Context, *linkwalk.Request) (*linkwalk.Response, error) {
			called = true

			return &linkwalk.Response{StatusCode: http.StatusOK}, nil
		})

		chain := linkwalk.NewInterceptorChain()
		chain.AddRequestInterceptor(func(context.Context, *linkwalk.Request) error { return errInterceptor })

		_, err := linkwalk.NewTransportExecutor(transport, chain).Execute(context.Background(), http.MethodGet, "http://api.io", linkwalk.RequestOptions{})
		require.ErrorIs(t, err, errInterceptor)
		assert.True(t, linkwalk.IsTransport(err))
		assert.False(t, called)
	})

	t.Run("executor does not retry", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		transport := linkwalk.TransportFunc(func(context.Context, *linkwalk.Request) (*linkwalk.Response, error) {
			attempts++

			return &linkwalk.Response{StatusCode: http.StatusServiceUnavailable}, nil
		})

		_, err := linkwalk.NewTransportExecutor(transport, nil).Execute(context.Background(), http.MethodGet, "http://api.io", linkwalk.RequestOptions{})
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestInterceptors(t *testing.T) {
	t.Parallel()

	transport := linkwalk.TransportFunc(func(_ context.Context, req *linkwalk.Request) (*linkwalk.Response, error) {
		if req.URI == "http://api.io/fail" {
			return &linkwalk.Response{StatusCode: http.StatusInternalServerError}, nil
		}

		return &linkwalk.Response{StatusCode: http.StatusOK, Headers: http.Header{"X-Echo": req.Headers.Values("X-Team")}}, nil
	})

	logger := &MockLogger{}
	collector := linkwalk.NewMetricsCollector()

	var changes []string

	collector.SetOnChange(func(endpoint string, _ linkwalk.Metrics) {
		changes = append(changes, endpoint)
	})

	chain := linkwalk.NewInterceptorChain()
	chain.AddRequestInterceptor(linkwalk.HeaderInterceptor(http.Header{"X-Team": []string{"walkers"}}))
	chain.AddRequestInterceptor(linkwalk.LoggingInterceptor(logger))
	chain.AddRequestInterceptor(linkwalk.MetricsRequestInterceptor(collector))
	chain.AddRequestInterceptor(linkwalk.RateLimitInterceptor(1000, 10))
	chain.AddResponseInterceptor(linkwalk.LoggingResponseInterceptor(logger))
	chain.AddResponseInterceptor(linkwalk.MetricsResponseInterceptor(collector))

	executor := linkwalk.NewTransportExecutor(transport, chain)
	ctx := context.Background()

	resp, err := executor.Execute(ctx, http.MethodGet, "http://api.io/ok", linkwalk.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "walkers", resp.Headers.Get("X-Echo"))

	resp, err = executor.Execute(ctx, http.MethodGet, "http://api.io/ok", linkwalk.RequestOptions{
		Headers: http.Header{"X-Team": []string{"override"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "override", resp.Headers.Get("X-Echo"))

	_, err = executor.Execute(ctx, http.MethodGet, "http://api.io/fail", linkwalk.RequestOptions{})
	require.Error(t, err)

	ok, found := collector.GetMetrics("GET http://api.io/ok")
	require.True(t, found)
	assert.Equal(t, int64(2), ok.TotalRequests)
	assert.Equal(t, int64(0), ok.TotalErrors)
	assert.False(t, ok.LastRequestTime.IsZero())

	failed, found := collector.GetMetrics("GET http://api.io/fail")
	require.True(t, found)
	assert.Equal(t, int64(1), failed.TotalErrors)

	_, found = collector.GetMetrics("GET http://api.io/never")
	assert.False(t, found)

	assert.Equal(t, []string{"GET http://api.io/ok", "GET http://api.io/ok", "GET http://api.io/fail"}, changes)
	assert.Equal(t, []string{
		"Walk Request", "Walk Response",
		"Walk Request", "Walk Response",
		"Walk Request", "Walk Response Error",
	}, logger.messages())
}

func TestRateLimitInterceptor_ContextCancelled(t *testing.T) {
	t.Parallel()

	interceptor := linkwalk.RateLimitInterceptor(0.001, 1)
	ctx := context.Background()

	require.NoError(t, interceptor(ctx, &linkwalk.Request{}))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	require.Error(t, interceptor(ctx, &linkwalk.Request{}))
}
