package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Static errors for err113 compliance.
var (
	ErrNotALink             = errors.New("relation is not a link")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrInvalidJSONPath      = errors.New("invalid JSONPath expression")
)

const (
	halLinksKey    = "_links"
	halEmbeddedKey = "_embedded"
)

// Link represents a single hypermedia link.
type Link struct {
	Href      string `json:"href"                yaml:"href"`
	Templated bool   `json:"templated,omitempty" yaml:"templated,omitempty"`
	Type      string `json:"type,omitempty"      yaml:"type,omitempty"`
	Name      string `json:"name,omitempty"      yaml:"name,omitempty"`
	Title     string `json:"title,omitempty"     yaml:"title,omitempty"`
}

// Document is a parsed response body that exposes its links and embedded
// resources by relation name.
type Document interface {
	// Link returns the link for rel. The bool reports whether rel is present;
	// a non-nil error means rel is present but cannot be read as a link.
	Link(rel string) (Link, bool, error)
	// Embedded returns the embedded resource for rel, if any.
	Embedded(rel string) (Document, bool)
	// Raw returns the bytes the document was parsed from.
	Raw() []byte
	// Value returns the decoded document.
	Value() interface{}
}

// style selects where a mapDocument looks for links.
type style int

const (
	stylePlain style = iota
	styleHAL
)

// mapDocument is the Document implementation shared by all built-in parsers.
type mapDocument struct {
	style style
	raw   []byte
	value interface{}
	// json marks documents whose raw bytes are JSON. JSONPath filters are
	// evaluated against an oj decoding of raw so numbers compare as numbers.
	json bool
}

func newMapDocument(s style, raw []byte, value interface{}) *mapDocument {
	return &mapDocument{style: s, raw: raw, value: value}
}

// Empty returns a document without links or embedded resources.
func Empty() Document {
	return newMapDocument(stylePlain, nil, map[string]interface{}{})
}

func (d *mapDocument) Raw() []byte {
	return d.raw
}

func (d *mapDocument) Value() interface{} {
	return d.value
}

func (d *mapDocument) object() map[string]interface{} {
	obj, _ := d.value.(map[string]interface{})

	return obj
}

// Link implements Document.
func (d *mapDocument) Link(rel string) (Link, bool, error) {
	if d.style == stylePlain && isJSONPath(rel) {
		value, ok, err := d.lookupPath(rel)
		if err != nil {
			return Link{}, true, err
		}

		if !ok {
			return Link{}, false, nil
		}

		return toLink(rel, value)
	}

	name, sel := parseSelector(rel)

	container := d.object()
	if d.style == styleHAL {
		container, _ = container[halLinksKey].(map[string]interface{})
	}

	value, ok := container[name]
	if !ok {
		return Link{}, false, nil
	}

	value, ok, err := sel.pick(value)
	if err != nil {
		return Link{}, true, fmt.Errorf("%s: %w", rel, err)
	}

	if !ok {
		return Link{}, false, nil
	}

	return toLink(rel, value)
}

// Embedded implements Document.
func (d *mapDocument) Embedded(rel string) (Document, bool) {
	if d.style != styleHAL {
		return nil, false
	}

	embedded, ok := d.object()[halEmbeddedKey].(map[string]interface{})
	if !ok {
		return nil, false
	}

	name, sel := parseSelector(rel)

	value, ok := embedded[name]
	if !ok {
		return nil, false
	}

	value, ok, err := sel.pick(value)
	if err != nil || !ok {
		return nil, false
	}

	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, false
	}

	raw, err := encodeJSON(obj)
	if err != nil {
		raw = nil
	}

	return newMapDocument(styleHAL, raw, obj), true
}

func toLink(rel string, value interface{}) (Link, bool, error) {
	switch v := value.(type) {
	case string:
		return Link{Href: v, Templated: strings.Contains(v, "{")}, true, nil
	case map[string]interface{}:
		href, ok := v["href"].(string)
		if !ok {
			return Link{}, true, fmt.Errorf("%s: %w", rel, ErrNotALink)
		}

		link := Link{Href: href}
		link.Templated, _ = v["templated"].(bool)
		link.Type, _ = v["type"].(string)
		link.Name, _ = v["name"].(string)
		link.Title, _ = v["title"].(string)

		return link, true, nil
	default:
		return Link{}, true, fmt.Errorf("%s: %w (got %T)", rel, ErrNotALink, value)
	}
}

// isJSONPath reports whether rel is a JSONPath expression rather than a
// relation name.
func isJSONPath(rel string) bool {
	return strings.HasPrefix(rel, "$.") || strings.HasPrefix(rel, "$[")
}

// lookupPath evaluates a JSONPath expression and returns its first match.
func (d *mapDocument) lookupPath(path string) (interface{}, bool, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, false, fmt.Errorf("%w %q: %w", ErrInvalidJSONPath, path, err)
	}

	data := d.value
	if d.json && len(d.raw) > 0 {
		if generic, parseErr := oj.Parse(d.raw); parseErr == nil {
			data = generic
		}
	}

	results := expr.Get(data)
	if len(results) == 0 {
		return nil, false, nil
	}

	return results[0], true, nil
}

// selector picks one element out of an array-valued relation. The forms
// are "rel" (first element), "rel[2]" (index) and "rel[name:value]"
// (first element whose property matches).
type selector struct {
	index    int
	key      string
	value    string
	hasIndex bool
}

func parseSelector(rel string) (string, selector) {
	open := strings.LastIndex(rel, "[")
	if open <= 0 || !strings.HasSuffix(rel, "]") {
		return rel, selector{}
	}

	name := rel[:open]
	inner := rel[open+1 : len(rel)-1]

	if key, value, ok := strings.Cut(inner, ":"); ok {
		return name, selector{key: key, value: value}
	}

	idx, err := strconv.Atoi(inner)
	if err != nil {
		return rel, selector{}
	}

	return name, selector{index: idx, hasIndex: true}
}

func (s selector) pick(value interface{}) (interface{}, bool, error) {
	items, isArray := value.([]interface{})
	if !isArray {
		if s.hasIndex && s.index != 0 {
			return nil, false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, s.index)
		}

		if s.key != "" {
			return value, matches(value, s.key, s.value), nil
		}

		return value, true, nil
	}

	switch {
	case s.key != "":
		for _, item := range items {
			if matches(item, s.key, s.value) {
				return item, true, nil
			}
		}

		return nil, false, nil
	case s.hasIndex:
		if s.index < 0 || s.index >= len(items) {
			return nil, false, fmt.Errorf("%w: %d", ErrIndexOutOfRange, s.index)
		}

		return items[s.index], true, nil
	case len(items) == 0:
		return nil, false, nil
	default:
		return items[0], true, nil
	}
}

func matches(item interface{}, key, value string) bool {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return false
	}

	return fmt.Sprint(obj[key]) == value
}
