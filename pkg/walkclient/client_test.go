package walkclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/fivetwenty-io/linkwalk/pkg/walkclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    string
		want    string
		wantErr error
	}{
		{name: "adds https scheme", root: "api.example.com", want: "https://api.example.com"},
		{name: "keeps http scheme", root: "http://api.example.com/", want: "http://api.example.com"},
		{name: "keeps path", root: "https://api.example.com/v1/", want: "https://api.example.com/v1"},
		{name: "trims whitespace", root: "  api.example.com ", want: "https://api.example.com"},
		{name: "empty root", root: "", wantErr: linkwalk.ErrRootRequired},
		{name: "no host", root: "https://", wantErr: linkwalk.ErrInvalidConfigValue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := walkclient.NormalizeRoot(tc.root)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := walkclient.New(context.Background(), nil)
		require.ErrorIs(t, err, linkwalk.ErrConfigRequired)
	})

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		config := &linkwalk.Config{RootURI: "api.example.com"}

		client, err := walkclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", client.Root())
		assert.Equal(t, "https://api.example.com", config.RootURI)
		assert.Equal(t, "application/json", config.MediaType)
		require.NoError(t, client.Close())
	})

	t.Run("creates client with root", func(t *testing.T) {
		t.Parallel()

		client, err := walkclient.NewWithRoot(context.Background(), "https://api.example.com")
		require.NoError(t, err)
		assert.NotNil(t, client.Metrics())
	})
}

func newHALServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server

	server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "application/hal+json", request.Header.Get("Accept"))
		assert.Equal(t, "acme", request.Header.Get("X-Tenant"))

		writer.Header().Set("Content-Type", "application/hal+json")

		switch {
		case request.URL.Path == "/" && request.Method == http.MethodGet:
			_, _ = fmt.Fprintf(writer, `{"_links": {"orders": {"href": "%s/orders"}}}`, server.URL)
		case request.URL.Path == "/orders" && request.Method == http.MethodGet:
			_, _ = writer.Write([]byte(`{
				"_links": {"find": {"href": "/orders/{id}", "templated": true}},
				"_embedded": {"latest": {"_links": {"self": {"href": "/orders/99"}}, "id": 99}}
			}`))
		case request.URL.Path == "/orders/42" && request.Method == http.MethodGet:
			_, _ = writer.Write([]byte(`{"id": 42, "status": "shipped"}`))
		case request.URL.Path == "/orders/99" && request.Method == http.MethodPatch:
			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(`{"id": 99, "status": "cancelled"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))

	t.Cleanup(server.Close)

	return server
}

func newHALClient(t *testing.T, server *httptest.Server) *walkclient.Client {
	t.Helper()

	client, err := walkclient.New(context.Background(), &linkwalk.Config{
		RootURI:      server.URL,
		MediaType:    "application/hal+json",
		Headers:      http.Header{"X-Tenant": []string{"acme"}},
		RetryMax:     -1,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
		RateLimit:    1000,
		RateBurst:    10,
		ProbeRoot:    true,
	})
	require.NoError(t, err)

	return client
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientIntegration(t *testing.T) {
	t.Parallel()

	t.Run("walks templated links over HTTP", func(t *testing.T) {
		t.Parallel()

		server := newHALServer(t)
		client := newHALClient(t, server)

		res, err := client.NewRequest().
			Walk("orders").
			WalkWithParams("find", linkwalk.Params{"id": 42}).
			Get(context.Background()).
			Wait(context.Background())
		require.NoError(t, err)

		value, ok := res.Document.Value().(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "shipped", value["status"])
		assert.Equal(t, server.URL+"/orders/42", res.Response.URI)
		require.Len(t, res.Steps, 2)

		metrics, found := client.Metrics().GetMetrics(http.MethodGet + " " + server.URL + "/orders/42")
		require.True(t, found)
		assert.Equal(t, int64(1), metrics.TotalRequests)
	})

	t.Run("patches an embedded resource through its self link", func(t *testing.T) {
		t.Parallel()

		server := newHALServer(t)
		client := newHALClient(t, server)

		res, err := client.NewRequest().
			Walk("orders", "latest").
			Patch(context.Background(), map[string]string{"status": "cancelled"}).
			Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/orders/99", res.Response.URI)
		assert.True(t, res.Steps[1].Embedded)
	})

	t.Run("missing relation", func(t *testing.T) {
		t.Parallel()

		server := newHALServer(t)
		client := newHALClient(t, server)

		_, err := client.NewRequest().Walk("customers").Get(context.Background()).Wait(context.Background())
		require.Error(t, err)
		assert.True(t, linkwalk.IsRelationNotFound(err))
	})

	t.Run("error status during the walk", func(t *testing.T) {
		t.Parallel()

		server := newHALServer(t)
		client := newHALClient(t, server)

		_, err := client.NewRequest().
			Walk("orders").
			WalkWithParams("find", linkwalk.Params{"id": 7}).
			Delete(context.Background()).
			Wait(context.Background())
		require.Error(t, err)
		assert.True(t, linkwalk.IsTerminalAction(err))
		assert.Equal(t, http.StatusNotFound, linkwalk.StatusCode(err))
	})
}

func TestNew_ProbeFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := walkclient.New(context.Background(), &linkwalk.Config{
		RootURI:   server.URL,
		RetryMax:  -1,
		ProbeRoot: true,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, linkwalk.StatusCode(err))
}
