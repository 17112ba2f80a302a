package codec

import gojson "github.com/goccy/go-json"

// JSON is a JSON codec backed by github.com/goccy/go-json.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// ContentType returns "application/json".
func (JSON) ContentType() string { return "application/json" }

// Append encodes the value to JSON and appends it to dst.
func (JSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
