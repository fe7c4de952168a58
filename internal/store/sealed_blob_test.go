package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBlob_RoundTrip(t *testing.T) {
	b, err := sealBlob("pw", "test", []byte("payload"))
	require.NoError(t, err)
	raw, err := openBlob("pw", "test", b)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), raw)
}

func TestOpenBlob_RejectsInflatedScryptParams(t *testing.T) {
	b, err := sealBlob("pw", "test", []byte("payload"))
	require.NoError(t, err)

	cases := map[string]func(*blob){
		"huge N":     func(bl *blob) { bl.N = 1 << 30 },
		"N not pow2": func(bl *blob) { bl.N = 3000 },
		"huge r":     func(bl *blob) { bl.R = 1 << 20 },
		"huge p":     func(bl *blob) { bl.P = 1 << 10 },
		"zero r":     func(bl *blob) { bl.R = 0 },
		"zero N":     func(bl *blob) { bl.N = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			var bl blob
			require.NoError(t, json.Unmarshal(b, &bl))
			mutate(&bl)
			tampered, err := json.Marshal(bl)
			require.NoError(t, err)

			_, err = openBlob("pw", "test", tampered)
			assert.ErrorIs(t, err, ErrWrongPassphrase)
		})
	}
}
