package linkwalk_test

import (
	"testing"

	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/fivetwenty-io/linkwalk/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTemplateResolver_Resolve(t *testing.T) {
	t.Parallel()

	doc, err := media.HALParser{}.Parse([]byte(`{
		"_links": {
			"absolute": {"href": "http://other.io/things?b=2&a=1"},
			"relative": {"href": "items/7"},
			"rooted": {"href": "/items/7"},
			"user": {"href": "/users/{id}{?fields*}", "templated": true},
			"implicit": {"href": "/search{?q}"},
			"tags": {"href": "/tags{/tag*}", "templated": true},
			"bad_template": {"href": "/users/{id", "templated": true},
			"empty": {"href": "  "},
			"no_href": {"title": "oops"}
		}
	}`))
	require.NoError(t, err)

	const base = "http://api.io/v1/catalog"

	tests := []struct {
		name      string
		step      linkwalk.Step
		resolver  linkwalk.TemplateResolver
		want      string
		wantErr   error
		malformed bool
	}{
		{name: "absolute href is used verbatim", step: linkwalk.Step{Relation: "absolute"}, want: "http://other.io/things?b=2&a=1"},
		{name: "relative href resolves against base", step: linkwalk.Step{Relation: "relative"}, want: "http://api.io/v1/items/7"},
		{name: "rooted href resolves against host", step: linkwalk.Step{Relation: "rooted"}, want: "http://api.io/items/7"},
		{
			name: "templated link is expanded",
			step: linkwalk.Step{Relation: "user", Params: linkwalk.Params{
				"id":     "ada",
				"fields": map[string]string{"name": "1", "age": "0"},
			}},
			want: "http://api.io/users/ada?age=0&name=1",
		},
		{name: "template without flag is detected", step: linkwalk.Step{Relation: "implicit", Params: linkwalk.Params{"q": "a b"}}, want: "http://api.io/search?q=a%20b"},
		{name: "list values", step: linkwalk.Step{Relation: "tags", Params: linkwalk.Params{"tag": []string{"go", "http"}}}, want: "http://api.io/tags/go/http"},
		{name: "missing parameter", step: linkwalk.Step{Relation: "user", Params: linkwalk.Params{"fields": map[string]string{"a": "b"}}}, wantErr: linkwalk.ErrMissingTemplateParam, malformed: true},
		{
			name:     "missing parameter allowed when partial templates are enabled",
			step:     linkwalk.Step{Relation: "implicit"},
			resolver: linkwalk.TemplateResolver{AllowPartialTemplates: true},
			want:     "http://api.io/search",
		},
		{name: "unparsable template", step: linkwalk.Step{Relation: "bad_template", Params: linkwalk.Params{"id": "1"}}, wantErr: linkwalk.ErrInvalidTemplate, malformed: true},
		{name: "blank href", step: linkwalk.Step{Relation: "empty"}, wantErr: linkwalk.ErrEmptyHref, malformed: true},
		{name: "link object without href", step: linkwalk.Step{Relation: "no_href"}, wantErr: media.ErrNotALink, malformed: true},
		{name: "absent relation", step: linkwalk.Step{Relation: "nope"}, wantErr: linkwalk.ErrRelationNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.resolver.Resolve(doc, base, tc.step)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.malformed, linkwalk.IsMalformedLink(err))
				assert.Equal(t, !tc.malformed, linkwalk.IsRelationNotFound(err))
				assert.Empty(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTemplateResolver_NilDocument(t *testing.T) {
	t.Parallel()

	_, err := linkwalk.TemplateResolver{}.Resolve(nil, "http://api.io", linkwalk.Step{Relation: "next"})
	require.ErrorIs(t, err, linkwalk.ErrRelationNotFound)
}
