package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Append(ctx, "a", []byte("first")))
	require.NoError(t, s.Append(ctx, "b", []byte("second")))

	data, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	_, err = s.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AppendOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Append(ctx, "a", []byte("first")))
	err := s.Append(ctx, "a", []byte("overwrite"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// The original entry is untouched.
	data, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("payload")
	require.NoError(t, s.Append(ctx, "a", in))
	in[0] = 'X'

	out, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), out)

	out[1] = 'Y'
	again, err := s.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), again)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		name        string
		compression Compression
	}{
		{name: "plain", compression: CompressionNone},
		{name: "gzip", compression: CompressionGzip},
		{name: "lz4", compression: CompressionLZ4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewLocalStore(t.TempDir(), WithCompression(tt.compression))
			require.NoError(t, err)

			payload := []byte(`{"run_id":"r1","status":"completed"}`)
			require.NoError(t, s.Append(ctx, "r1-abc", payload))

			out, err := s.Read(ctx, "r1-abc")
			require.NoError(t, err)
			assert.Equal(t, payload, out)

			assert.ErrorIs(t, s.Append(ctx, "r1-abc", payload), ErrDuplicateKey)

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"r1-abc"}, keys)

			_, err = s.Read(ctx, "gone")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_MixedCompression(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	plain, err := NewLocalStore(dir)
	require.NoError(t, err)
	gz, err := NewLocalStore(dir, WithCompression(CompressionGzip))
	require.NoError(t, err)

	require.NoError(t, plain.Append(ctx, "a", []byte("plain entry")))
	require.NoError(t, gz.Append(ctx, "b", []byte("gzip entry")))

	// Either handle reads both framings.
	for _, s := range []*LocalStore{plain, gz} {
		out, err := s.Read(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("plain entry"), out)

		out, err = s.Read(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []byte("gzip entry"), out)

		keys, err := s.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, keys)
	}

	// Append-only holds across compression settings.
	assert.ErrorIs(t, gz.Append(ctx, "a", []byte("x")), ErrDuplicateKey)
}
