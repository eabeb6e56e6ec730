package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is the most portable option; records written with it can be read by any
// JSON tooling. The library default may change over time, but persisted
// records always carry the codec name.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// Existing persisted records are self-describing (they record the codec name)
// and are decoded by selecting the appropriate codec by name.
var Default Codec = GoJSON{}
