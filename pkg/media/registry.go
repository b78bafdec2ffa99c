package media

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"sync"
)

// Parser turns a response body into a Document.
type Parser interface {
	MediaType() string
	Parse(body []byte) (Document, error)
}

// Registry selects a Parser by Content-Type.
type Registry struct {
	mu          sync.RWMutex
	parsers     map[string]Parser
	defaultType string
}

// NewRegistry creates a registry with the given parsers. defaultType is used
// when a response carries no Content-Type or one without a registered parser.
func NewRegistry(defaultType string, parsers ...Parser) *Registry {
	r := &Registry{
		parsers:     make(map[string]Parser, len(parsers)),
		defaultType: defaultType,
	}

	for _, p := range parsers {
		r.Register(p)
	}

	return r
}

// DefaultRegistry returns a registry with the JSON, HAL and YAML parsers,
// defaulting to defaultType (plain JSON when empty).
func DefaultRegistry(defaultType string) *Registry {
	if defaultType == "" {
		defaultType = MediaTypeJSON
	}

	r := NewRegistry(defaultType, JSONParser{}, HALParser{}, YAMLParser{})
	r.RegisterAs(MediaTypeXYAML, YAMLParser{})

	return r
}

// Register adds p under its own media type.
func (r *Registry) Register(p Parser) {
	r.RegisterAs(p.MediaType(), p)
}

// RegisterAs adds p under mediaType.
func (r *Registry) RegisterAs(mediaType string, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[strings.ToLower(mediaType)] = p
}

// DefaultType returns the media type used when none can be determined.
func (r *Registry) DefaultType() string {
	return r.defaultType
}

// Lookup returns the parser for contentType, falling back to JSON for
// "+json" suffixed types and to the default type otherwise.
func (r *Registry) Lookup(contentType string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mediaType := ""

	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			mediaType = strings.ToLower(parsed)
		}
	}

	if p, ok := r.parsers[mediaType]; ok {
		return p, nil
	}

	if strings.HasSuffix(mediaType, "+json") {
		if p, ok := r.parsers[MediaTypeJSON]; ok {
			return p, nil
		}
	}

	if p, ok := r.parsers[r.defaultType]; ok {
		return p, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
}

// Parse parses body with the parser selected for contentType. Empty bodies
// yield an empty document.
func (r *Registry) Parse(contentType string, body []byte) (Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return newMapDocument(stylePlain, body, map[string]interface{}{}), nil
	}

	p, err := r.Lookup(contentType)
	if err != nil {
		return nil, err
	}

	return p.Parse(body)
}
