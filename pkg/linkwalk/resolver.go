package linkwalk

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/fivetwenty-io/linkwalk/pkg/media"
)

// LinkResolver turns the link for a step's relation into an absolute URI.
type LinkResolver interface {
	Resolve(doc media.Document, base string, step Step) (string, error)
}

// TemplateResolver resolves direct and templated links. It has no side
// effects and is safe for concurrent use.
type TemplateResolver struct {
	// AllowPartialTemplates expands templates even when some variables have
	// no parameter, dropping them the way RFC 6570 does.
	AllowPartialTemplates bool
}

// Resolve implements LinkResolver.
func (r TemplateResolver) Resolve(doc media.Document, base string, step Step) (string, error) {
	if doc == nil {
		return "", &RelationNotFoundError{Relation: step.Relation, URI: base}
	}

	link, found, err := doc.Link(step.Relation)
	if err != nil {
		return "", &MalformedLinkError{Relation: step.Relation, Err: err}
	}

	if !found {
		return "", &RelationNotFoundError{Relation: step.Relation, URI: base}
	}

	href := strings.TrimSpace(link.Href)
	if href == "" {
		return "", &MalformedLinkError{Relation: step.Relation, Err: ErrEmptyHref}
	}

	if link.Templated || strings.Contains(href, "{") {
		expanded, err := r.expand(href, step.Params)
		if err != nil {
			return "", &MalformedLinkError{Relation: step.Relation, Href: href, Err: err}
		}

		href = expanded
	}

	resolved, err := resolveReference(base, href)
	if err != nil {
		return "", &MalformedLinkError{Relation: step.Relation, Href: href, Err: err}
	}

	return resolved, nil
}

func (r TemplateResolver) expand(raw string, params Params) (string, error) {
	tmpl, err := uritemplate.New(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	values := uritemplate.Values{}

	var missing []string

	for _, name := range tmpl.Varnames() {
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)

			continue
		}

		values.Set(name, templateValue(value))
	}

	if len(missing) > 0 && !r.AllowPartialTemplates {
		return "", fmt.Errorf("%w: %s", ErrMissingTemplateParam, strings.Join(missing, ", "))
	}

	expanded, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding template: %w", err)
	}

	return expanded, nil
}

func templateValue(v interface{}) uritemplate.Value {
	switch value := v.(type) {
	case string:
		return uritemplate.String(value)
	case []string:
		return uritemplate.List(value...)
	case map[string]string:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		kv := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			kv = append(kv, k, value[k])
		}

		return uritemplate.KV(kv...)
	default:
		return uritemplate.String(fmt.Sprint(value))
	}
}

// resolveReference resolves href against base. Absolute hrefs are returned
// verbatim.
func resolveReference(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing href: %w", err)
	}

	if ref.IsAbs() || base == "" {
		return href, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URI: %w", err)
	}

	return baseURL.ResolveReference(ref).String(), nil
}
