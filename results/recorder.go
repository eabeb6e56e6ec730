package results

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kgelab/embark/codec"
	"github.com/kgelab/embark/resource"
)

// Recorder serializes records into a Store. Every call to Record produces a
// fresh log entry: identical inputs yield two distinct, independently
// readable entries (no deduplication).
type Recorder struct {
	store Store
	codec codec.Codec
	ctrl  *resource.Controller
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCodec sets the serialization codec. Nil selects codec.Default.
func WithCodec(c codec.Codec) RecorderOption {
	return func(r *Recorder) {
		if c == nil {
			c = codec.Default
		}
		r.codec = c
	}
}

// WithResourceController throttles log writes through the controller's IO
// budget.
func WithResourceController(ctrl *resource.Controller) RecorderOption {
	return func(r *Recorder) { r.ctrl = ctrl }
}

// NewRecorder creates a recorder writing into the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, codec: codec.Default}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Record appends one entry and returns its key. The entry key combines the
// run id with a fresh suffix, so recording the same result twice appends
// twice.
func (r *Recorder) Record(ctx context.Context, rec *Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("results: nil record")
	}
	rec.Codec = r.codec.Name()

	data, err := r.codec.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("results: encoding record: %w", err)
	}

	if err := r.ctrl.AcquireIO(ctx, len(data)); err != nil {
		return "", err
	}

	key := rec.Result.RunID
	if key == "" {
		key = "run"
	}
	key = key + "-" + uuid.NewString()[:8]
	if err := r.store.Append(ctx, key, data); err != nil {
		return "", fmt.Errorf("results: appending entry %s: %w", key, err)
	}
	return key, nil
}

// Read decodes the entry stored under key. The record's codec name selects
// the decoder, so logs survive a change of the default codec.
func (r *Recorder) Read(ctx context.Context, key string) (*Record, error) {
	data, err := r.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := r.codec.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("results: decoding entry %s: %w", key, err)
	}
	if rec.Codec != "" && rec.Codec != r.codec.Name() {
		c, ok := codec.ByName(rec.Codec)
		if !ok {
			return nil, fmt.Errorf("results: entry %s written with unknown codec %q", key, rec.Codec)
		}
		rec = Record{}
		if err := c.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("results: decoding entry %s: %w", key, err)
		}
	}
	return &rec, nil
}

// Keys lists the log's entry keys, sorted.
func (r *Recorder) Keys(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx)
}
