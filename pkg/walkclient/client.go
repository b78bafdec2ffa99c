// Package walkclient provides the main entry point for creating walk clients
// backed by the retrying HTTP transport.
package walkclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/internal/events"
	lwhttp "github.com/fivetwenty-io/linkwalk/internal/http"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/fivetwenty-io/linkwalk/pkg/media"
)

// Client is a walk factory bound to the configured root, plus the resources
// it owns.
type Client struct {
	*linkwalk.Factory

	metrics   *linkwalk.MetricsCollector
	publisher *events.Publisher
}

// New creates a walk client from config.
func New(ctx context.Context, config *linkwalk.Config) (*Client, error) {
	if config == nil {
		return nil, linkwalk.ErrConfigRequired
	}

	root, err := NormalizeRoot(config.RootURI)
	if err != nil {
		return nil, err
	}

	config.RootURI = root

	if config.MediaType == "" {
		config.MediaType = media.MediaTypeJSON
	}

	chain, metrics := newInterceptorChain(config)

	var publisher *events.Publisher

	opts := []linkwalk.Option{
		linkwalk.WithTransport(newTransport(config)),
		linkwalk.WithInterceptors(chain),
		linkwalk.WithMediaType(config.MediaType),
		linkwalk.WithEmbeddedPolicy(config.EmbeddedPolicy),
		linkwalk.WithDefaultHeaders(config.Headers),
	}

	if config.Logger != nil {
		opts = append(opts, linkwalk.WithLogger(config.Logger))
	}

	if config.EventsURL != "" {
		publisher, err = events.Connect(config.EventsURL, config.EventsSubject, events.WithLogger(config.Logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create events publisher: %w", err)
		}

		opts = append(opts, linkwalk.WithObserver(publisher))
	}

	walker, err := linkwalk.New(opts...)
	if err != nil {
		closePublisher(publisher)

		return nil, fmt.Errorf("failed to create walk client: %w", err)
	}

	client := &Client{
		Factory:   walker.From(root),
		metrics:   metrics,
		publisher: publisher,
	}

	if config.ProbeRoot {
		err = client.Probe(ctx)
		if err != nil {
			closePublisher(publisher)

			return nil, err
		}
	}

	return client, nil
}

// NewWithRoot creates a client with default settings for root.
func NewWithRoot(ctx context.Context, root string) (*Client, error) {
	return New(ctx, &linkwalk.Config{RootURI: root})
}

// NormalizeRoot trims a trailing slash and adds https:// when root has no
// scheme.
func NormalizeRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", linkwalk.ErrRootRequired
	}

	if !strings.HasPrefix(root, "http://") && !strings.HasPrefix(root, "https://") {
		root = constants.DefaultScheme + root
	}

	root = strings.TrimSuffix(root, "/")

	parsed, err := url.Parse(root)
	if err != nil || parsed.Host == "" {
		return "", &linkwalk.ConfigError{Field: "root", Value: root}
	}

	return root, nil
}

// Probe GETs and parses the root once, surfacing connectivity, status and
// media type problems.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ProbeTimeout)
	defer cancel()

	_, err := c.NewRequest().Get(ctx).Wait(ctx)
	if err != nil {
		return fmt.Errorf("probing root %s: %w", c.Root(), err)
	}

	return nil
}

// Metrics returns per-endpoint request statistics for every walk of this
// client.
func (c *Client) Metrics() *linkwalk.MetricsCollector {
	return c.metrics
}

// Close releases the events connection, if any.
func (c *Client) Close() error {
	if c.publisher == nil {
		return nil
	}

	err := c.publisher.Close()
	if err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}

	return nil
}

func newTransport(config *linkwalk.Config) *lwhttp.Client {
	retryMax := config.RetryMax

	switch {
	case retryMax == 0:
		retryMax = constants.DefaultRetryMax
	case retryMax < 0:
		retryMax = 0
	}

	waitMin := config.RetryWaitMin
	if waitMin <= 0 {
		waitMin = constants.DefaultRetryWaitMin
	}

	waitMax := config.RetryWaitMax
	if waitMax <= 0 {
		waitMax = constants.DefaultRetryWaitMax
	}

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	opts := []lwhttp.Option{
		lwhttp.WithRetryConfig(retryMax, waitMin, waitMax),
		lwhttp.WithTimeout(timeout),
		lwhttp.WithDebug(config.Debug),
	}

	if config.UserAgent != "" {
		opts = append(opts, lwhttp.WithUserAgent(config.UserAgent))
	}

	if config.Logger != nil {
		opts = append(opts, lwhttp.WithLogger(config.Logger))
	}

	return lwhttp.NewClient(opts...)
}

func newInterceptorChain(config *linkwalk.Config) (*linkwalk.InterceptorChain, *linkwalk.MetricsCollector) {
	chain := linkwalk.NewInterceptorChain()
	metrics := linkwalk.NewMetricsCollector()

	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}

		chain.AddRequestInterceptor(linkwalk.RateLimitInterceptor(config.RateLimit, burst))
	}

	if config.Logger != nil {
		chain.AddRequestInterceptor(linkwalk.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(linkwalk.LoggingResponseInterceptor(config.Logger))
	}

	chain.AddRequestInterceptor(linkwalk.MetricsRequestInterceptor(metrics))
	chain.AddResponseInterceptor(linkwalk.MetricsResponseInterceptor(metrics))

	return chain, metrics
}

func closePublisher(publisher *events.Publisher) {
	if publisher != nil {
		_ = publisher.Close()
	}
}
