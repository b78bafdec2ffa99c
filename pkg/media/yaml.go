package media

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Media types handled by YAMLParser.
const (
	MediaTypeYAML  = "application/yaml"
	MediaTypeXYAML = "application/x-yaml"
)

// YAMLParser parses YAML documents. A document with a top-level "_links"
// mapping is read with HAL rules, anything else with plain JSON rules.
type YAMLParser struct{}

// MediaType implements Parser.
func (YAMLParser) MediaType() string {
	return MediaTypeYAML
}

// Parse implements Parser.
func (YAMLParser) Parse(body []byte) (Document, error) {
	var value interface{}

	err := yaml.Unmarshal(body, &value)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML document: %w", err)
	}

	s := stylePlain
	if obj, ok := value.(map[string]interface{}); ok {
		if _, hal := obj[halLinksKey]; hal {
			s = styleHAL
		}
	}

	return newMapDocument(s, body, value), nil
}
