package linkwalk

import (
	"net/http"
	"time"

	"github.com/fivetwenty-io/linkwalk/pkg/media"
)

// Params holds URI template parameters. Values may be strings, string
// slices (list expansion), string maps (associative expansion) or anything
// printable with fmt.
type Params map[string]interface{}

// merge returns a copy of p overlaid with override.
func (p Params) merge(override Params) Params {
	if len(p) == 0 && len(override) == 0 {
		return nil
	}

	merged := make(Params, len(p)+len(override))
	for k, v := range p {
		merged[k] = v
	}

	for k, v := range override {
		merged[k] = v
	}

	return merged
}

// Step is one relation (plus optional template parameters) in a walk.
type Step struct {
	Relation string `json:"relation"         yaml:"relation"`
	Params   Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// Request is a single outbound HTTP request handed to a Transport.
type Request struct {
	Method   string
	URI      string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response is the normalized result of one HTTP call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// URI is the resolved URI the response came from.
	URI string
	// Document is the parsed body. It is set by the walk, not the transport.
	Document media.Document
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}

	return r.Headers.Get("Content-Type")
}

// StepTrace records how a step was satisfied.
type StepTrace struct {
	Relation string `json:"relation"`
	URI      string `json:"uri"`
	Embedded bool   `json:"embedded"`
}

// Result is the successful outcome of a walk.
type Result struct {
	WalkID string
	// Response is the terminal action's response, or the embedded resource
	// when a GET walk ended on one.
	Response *Response
	// Document is the parsed terminal response, nil when the body could not
	// be parsed for a non-GET action.
	Document media.Document
	Steps    []StepTrace
}

// Transition describes a single state change of a walk.
type Transition struct {
	WalkID   string
	From     State
	To       State
	URI      string
	Relation string
	Err      error
	At       time.Time
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// EmbeddedPolicy controls how embedded resources that satisfy a step are
// checked before use.
type EmbeddedPolicy int

const (
	// EmbeddedTrust uses embedded resources as they are.
	EmbeddedTrust EmbeddedPolicy = iota
	// EmbeddedRequireSelf rejects embedded resources without a resolvable
	// self link.
	EmbeddedRequireSelf
)

// String implements fmt.Stringer.
func (p EmbeddedPolicy) String() string {
	switch p {
	case EmbeddedRequireSelf:
		return "require-self"
	default:
		return "trust"
	}
}

// ParseEmbeddedPolicy parses the String form of a policy.
func ParseEmbeddedPolicy(s string) (EmbeddedPolicy, error) {
	switch s {
	case "", "trust":
		return EmbeddedTrust, nil
	case "require-self":
		return EmbeddedRequireSelf, nil
	default:
		return EmbeddedTrust, &ConfigError{Field: "embedded_policy", Value: s}
	}
}

// Config represents client configuration for building a walk client.
//
// Per-walk timeouts should be controlled via the context passed to terminal
// actions. Retry behavior belongs to the transport and can be tuned via
// RetryMax/RetryWaitMin/RetryWaitMax.
type Config struct {
	// RootURI: entry point every walk starts from. A missing scheme is
	// replaced with "https://".
	RootURI string
	// MediaType: parser used when a response has no usable Content-Type; also
	// sent as the Accept header.
	MediaType string
	// Headers: sent with every request of every walk.
	Headers http.Header
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPTimeout: per-request timeout applied by the transport.
	HTTPTimeout time.Duration
	// RetryMax: maximum transport retries for transient failures (>=500, 429,
	// connection errors). Zero keeps the transport default; negative disables.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// EventsURL: NATS server that receives walk transitions. Empty disables.
	EventsURL string
	// EventsSubject: subject prefix for walk transitions.
	EventsSubject string
	// EmbeddedPolicy: see EmbeddedPolicy.
	EmbeddedPolicy EmbeddedPolicy
	// ProbeRoot: when true, the root URI is fetched once on construction so
	// misconfiguration surfaces early.
	ProbeRoot bool
	// RateLimit: maximum requests per second across all walks of the client.
	// Zero disables limiting.
	RateLimit float64
	// RateBurst: requests allowed above RateLimit in a burst. Defaults to 1.
	RateBurst int
}
