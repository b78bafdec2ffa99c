package media

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MediaTypeJSON is the media type handled by JSONParser.
const MediaTypeJSON = "application/json"

// JSONParser parses plain JSON documents. Links are top-level properties
// holding either a URI string or an object with an href. Relations starting
// with "$." or "$[" are JSONPath expressions; the first match is the link.
type JSONParser struct{}

// MediaType implements Parser.
func (JSONParser) MediaType() string {
	return MediaTypeJSON
}

// Parse implements Parser.
func (JSONParser) Parse(body []byte) (Document, error) {
	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}

	doc := newMapDocument(stylePlain, body, value)
	doc.json = true

	return doc, nil
}

func decodeJSON(body []byte) (interface{}, error) {
	var value interface{}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	err := decoder.Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON document: %w", err)
	}

	return value, nil
}

func encodeJSON(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedded resource: %w", err)
	}

	return data, nil
}
