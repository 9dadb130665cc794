package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type candidate struct {
	Index    int        `json:"index"`
	Distance float64    `json:"distance"`
	Frac     [3]float64 `json:"fractional"`
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())

			in := []candidate{{Index: 26, Distance: 17.3205, Frac: [3]float64{1, 1, 1}}}
			data, err := c.Marshal(in)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"fractional"`)

			var out []candidate
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
	assert.Panics(t, func() { MustMarshal(JSON{}, func() {}) })
}
