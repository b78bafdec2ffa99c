package media

// MediaTypeHAL is the media type handled by HALParser.
const MediaTypeHAL = "application/hal+json"

// HALParser parses HAL documents: links live under "_links" and embedded
// resources under "_embedded". Array-valued relations resolve to their first
// element unless the relation carries a selector such as "item[2]" or
// "item[name:foo]".
type HALParser struct{}

// MediaType implements Parser.
func (HALParser) MediaType() string {
	return MediaTypeHAL
}

// Parse implements Parser.
func (HALParser) Parse(body []byte) (Document, error) {
	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}

	return newMapDocument(styleHAL, body, value), nil
}
