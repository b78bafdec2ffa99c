package linkwalk

import (
	"net/http"

	"github.com/fivetwenty-io/linkwalk/pkg/media"
)

// Client holds the collaborators shared by every walk. It is safe for
// concurrent use; walks never share mutable state.
type Client struct {
	executor  Executor
	transport Transport
	resolver  LinkResolver
	parser    BodyParser
	logger    Logger
	observer  Observer
	policy    EmbeddedPolicy
	mediaType string
	headers   http.Header
	chain     *InterceptorChain
	machine   *Machine
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor sets the request executor. It takes precedence over
// WithTransport.
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

// WithTransport sets the transport wrapped by the default executor.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithInterceptors sets the interceptor chain of the default executor.
func WithInterceptors(chain *InterceptorChain) Option {
	return func(c *Client) {
		c.chain = chain
	}
}

// WithResolver sets the link resolver.
func WithResolver(resolver LinkResolver) Option {
	return func(c *Client) {
		c.resolver = resolver
	}
}

// WithParser sets the body parser, usually a *media.Registry.
func WithParser(parser BodyParser) Option {
	return func(c *Client) {
		c.parser = parser
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver sets the transition observer.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithMediaType sets the media type sent as Accept and used to parse
// responses without a usable Content-Type.
func WithMediaType(mediaType string) Option {
	return func(c *Client) {
		c.mediaType = mediaType
	}
}

// WithEmbeddedPolicy sets how embedded resources are checked.
func WithEmbeddedPolicy(policy EmbeddedPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithDefaultHeaders sets headers sent with every request.
func WithDefaultHeaders(headers http.Header) Option {
	return func(c *Client) {
		c.headers = headers.Clone()
	}
}

// New creates a Client. A Transport or an Executor is required.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		resolver:  TemplateResolver{},
		logger:    noopLogger{},
		mediaType: media.MediaTypeJSON,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		if c.transport == nil {
			return nil, ErrNilTransport
		}

		c.executor = NewTransportExecutor(c.transport, c.chain)
	}

	if c.parser == nil {
		c.parser = media.DefaultRegistry(c.mediaType)
	}

	if c.logger == nil {
		c.logger = noopLogger{}
	}

	if c.headers == nil {
		c.headers = make(http.Header)
	}

	if c.headers.Get("Accept") == "" && c.mediaType != "" {
		c.headers.Set("Accept", c.mediaType)
	}

	c.machine = NewMachine(c.executor, c.resolver, c.parser, c.logger, c.observer, c.policy)

	return c, nil
}

// Executor returns the executor walks are run with.
func (c *Client) Executor() Executor {
	return c.executor
}

// From returns a factory for walks starting at root.
func (c *Client) From(root string) *Factory {
	return &Factory{client: c, root: root}
}

// Factory creates request builders for a fixed root URI.
type Factory struct {
	client *Client
	root   string
}

// Root returns the URI every walk from this factory starts at.
func (f *Factory) Root() string {
	return f.root
}

// NewRequest returns a fresh, single-use request builder.
func (f *Factory) NewRequest() *RequestBuilder {
	return newRequestBuilder(f.client, f.root)
}
