package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Description string   `json:"description"`
	Keys        []string `json:"keys"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			in := sample{Description: "Center", Keys: []string{"Age"}}
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestMustMarshal(t *testing.T) {
	b := MustMarshal(nil, map[string]int{"a": 1})
	assert.JSONEq(t, `{"a":1}`, string(b))

	assert.Panics(t, func() {
		MustMarshal(JSON{}, func() {})
	})
}

func TestGoJSONAppend(t *testing.T) {
	dst := []byte("prefix:")
	out, err := GoJSON{}.Append(dst, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "prefix:[1,2]", string(out))
}
