package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a MessagePack codec backed by github.com/vmihailenco/msgpack/v5.
// Struct fields use their msgpack tags, falling back to json tags.
type Msgpack struct{}

// Marshal encodes the value to MessagePack.
func (Msgpack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the MessagePack data into v.
func (Msgpack) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Name returns the unique name of the codec ("msgpack").
func (Msgpack) Name() string { return "msgpack" }

// ContentType returns "application/msgpack".
func (Msgpack) ContentType() string { return "application/msgpack" }
