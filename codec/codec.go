// Package codec centralizes request, response and record encoding.
//
// The HTTP boundary picks a codec from the Content-Type header; the record
// store always uses msgpack.
package codec

import (
	"fmt"
	"mime"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
	ContentType() string
}

// ForContentType returns the codec for a Content-Type header value.
// An empty header selects Default.
func ForContentType(header string) (Codec, bool) {
	if strings.TrimSpace(header) == "" {
		return Default, true
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return nil, false
	}

	switch mediaType {
	case "application/json", "text/json":
		return JSON{}, true
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return Msgpack{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when a request does not name one.
var Default Codec = JSON{}
