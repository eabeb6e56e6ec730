package results

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the local store's on-disk framing.
type Compression int

const (
	// CompressionNone writes plain entries.
	CompressionNone Compression = iota
	// CompressionGzip wraps entries in gzip.
	CompressionGzip
	// CompressionLZ4 wraps entries in an lz4 frame.
	CompressionLZ4
)

func (c Compression) ext() string {
	switch c {
	case CompressionGzip:
		return ".json.gz"
	case CompressionLZ4:
		return ".json.lz4"
	default:
		return ".json"
	}
}

// LocalStore persists one file per log entry under a root directory.
// Files are written atomically (temp file + rename) and never rewritten.
type LocalStore struct {
	root        string
	compression Compression
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithCompression sets the on-disk compression. Reading always detects the
// framing from the file extension, so a directory may mix compressions.
func WithCompression(c Compression) LocalOption {
	return func(s *LocalStore) { s.compression = c }
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string, opts ...LocalOption) (*LocalStore, error) {
	s := &LocalStore{root: dir}
	for _, fn := range opts {
		fn(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	return s, nil
}

// Append implements Store.
func (s *LocalStore) Append(_ context.Context, key string, data []byte) error {
	if existing := s.find(key); existing != "" {
		return ErrDuplicateKey
	}

	encoded, err := s.encode(data)
	if err != nil {
		return err
	}

	final := filepath.Join(s.root, key+s.compression.ext())
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Read implements Store.
func (s *LocalStore) Read(_ context.Context, key string) ([]byte, error) {
	path := s.find(key)
	if path == "" {
		return nil, ErrNotFound
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(path, raw)
}

// Keys implements Store.
func (s *LocalStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		out = append(out, stripExt(e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// find returns the path of the entry with the given key under any known
// extension, or "".
func (s *LocalStore) find(key string) string {
	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionLZ4} {
		path := filepath.Join(s.root, key+c.ext())
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (s *LocalStore) encode(data []byte) ([]byte, error) {
	switch s.compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return data, nil
	}
}

func decode(path string, raw []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case strings.HasSuffix(path, ".lz4"):
		return io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
	default:
		return raw, nil
	}
}

func stripExt(name string) string {
	for _, suffix := range []string{".json.gz", ".json.lz4", ".json"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
