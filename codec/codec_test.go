package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	RunID  string             `json:"run_id"`
	Status string             `json:"status"`
	Losses []float64          `json:"losses,omitempty"`
	Hits   map[string]float64 `json:"hits,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	in := testRecord{
		RunID:  "run-42",
		Status: "completed",
		Losses: []float64{0.93, 0.71, 0.55},
		Hits:   map[string]float64{"1": 0.12, "10": 0.48},
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out testRecord
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCrossDecode(t *testing.T) {
	// Both codecs speak JSON, so either decodes the other's output.
	in := testRecord{RunID: "run-7", Status: "failed"}

	data := MustMarshal(GoJSON{}, in)
	var out testRecord
	require.NoError(t, JSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
