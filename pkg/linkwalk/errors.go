package linkwalk

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrRelationNotFound     = errors.New("relation not found")
	ErrMalformedLink        = errors.New("malformed link")
	ErrMissingTemplateParam = errors.New("missing template parameter")
	ErrInvalidTemplate      = errors.New("invalid URI template")
	ErrEmptyHref            = errors.New("link has no href")
	ErrNoSelfLink           = errors.New("embedded resource has no self link")
	ErrBuilderUsed          = errors.New("request builder already used, call NewRequest for a fresh one")
	ErrRootRequired         = errors.New("root URI is required")
	ErrConfigRequired       = errors.New("config is required")
	ErrNilTransport         = errors.New("a transport or executor is required")
	ErrEmptyResponse        = errors.New("transport returned no response")
	ErrInvalidConfigValue   = errors.New("invalid configuration value")
)

// TransportError is a failure to fetch an intermediate resource. Err is the
// transport's error, unchanged.
type TransportError struct {
	Method string
	URI    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URI, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response whose status code signals failure.
type StatusError struct {
	Response *Response
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Response.StatusCode, e.Response.URI)
}

// ParseError reports a body that cannot be parsed for its media type.
type ParseError struct {
	URI         string
	ContentType string
	Err         error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response from %s: %v", e.ContentType, e.URI, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RelationNotFoundError reports a relation absent from the current document.
type RelationNotFoundError struct {
	Relation string
	URI      string
}

// Error implements the error interface.
func (e *RelationNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q in document from %s", ErrRelationNotFound, e.Relation, e.URI)
}

// Is reports whether target is ErrRelationNotFound.
func (e *RelationNotFoundError) Is(target error) bool {
	return target == ErrRelationNotFound
}

// MalformedLinkError reports a relation that is present but cannot be
// turned into a URI.
type MalformedLinkError struct {
	Relation string
	Href     string
	Err      error
}

// Error implements the error interface.
func (e *MalformedLinkError) Error() string {
	if e.Href == "" {
		return fmt.Sprintf("%s %q: %v", ErrMalformedLink, e.Relation, e.Err)
	}

	return fmt.Sprintf("%s %q (%s): %v", ErrMalformedLink, e.Relation, e.Href, e.Err)
}

// Is reports whether target is ErrMalformedLink.
func (e *MalformedLinkError) Is(target error) bool {
	return target == ErrMalformedLink
}

func (e *MalformedLinkError) Unwrap() error {
	return e.Err
}

// TerminalActionError reports a failed terminal GET/POST/PUT/PATCH/DELETE.
// Err is the transport's error, unchanged.
type TerminalActionError struct {
	Method string
	URI    string
	Err    error
}

// Error implements the error interface.
func (e *TerminalActionError) Error() string {
	return fmt.Sprintf("terminal %s %s: %v", e.Method, e.URI, e.Err)
}

func (e *TerminalActionError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrInvalidConfigValue, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfigValue
}

// IsRelationNotFound checks if the error is a relation not found error.
func IsRelationNotFound(err error) bool {
	target := &RelationNotFoundError{}

	return errors.As(err, &target)
}

// IsMalformedLink checks if the error is a malformed link error.
func IsMalformedLink(err error) bool {
	target := &MalformedLinkError{}

	return errors.As(err, &target)
}

// IsTransport checks if the error is a failure to fetch an intermediate
// resource.
func IsTransport(err error) bool {
	target := &TransportError{}

	return errors.As(err, &target)
}

// IsTerminalAction checks if the error is a failed terminal action.
func IsTerminalAction(err error) bool {
	target := &TerminalActionError{}

	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	target := &StatusError{}
	if errors.As(err, &target) && target.Response != nil {
		return target.Response.StatusCode
	}

	return 0
}
