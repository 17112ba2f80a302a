package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Vector    []float32 `json:"vector"`
	ID        int64     `json:"id"`
	IndexType string    `json:"index_type,omitempty"`
}

func TestForContentType(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "json", true},
		{"application/json", "json", true},
		{"application/json; charset=utf-8", "json", true},
		{"application/msgpack", "msgpack", true},
		{"application/x-msgpack", "msgpack", true},
		{"text/plain", "", false},
		{"not a media type;;", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			c, ok := ForContentType(tt.header)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, c.Name())
			}
		})
	}
}

func TestMsgpackUsesJSONTags(t *testing.T) {
	in := request{Vector: []float32{1, 2}, ID: 7, IndexType: "FLAT"}

	data, err := Msgpack{}.Marshal(in)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, Msgpack{}.Unmarshal(data, &m))
	assert.Contains(t, m, "vector")
	assert.Contains(t, m, "index_type")

	var out request
	require.NoError(t, Msgpack{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestJSONDecode(t *testing.T) {
	var out request
	require.NoError(t, JSON{}.Unmarshal([]byte(`{"vector":[0.5],"id":3,"index_type":"HNSW"}`), &out))
	assert.Equal(t, request{Vector: []float32{0.5}, ID: 3, IndexType: "HNSW"}, out)

	assert.Error(t, JSON{}.Unmarshal([]byte(`{"vector":`), &out))

	b, err := JSON{}.Append([]byte("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, "x1", string(b))
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"id":1}`, string(MustMarshal(nil, map[string]int{"id": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
