// Package codec is the JSON serializer boundary used by request
// builders and response handlers.
package codec

import (
	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// Codec marshals and unmarshals JSON payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Std is a sonic codec compatible with encoding/json: map keys are
// sorted and HTML is escaped.
var Std Codec = sonic.ConfigStd

// Fast is a sonic codec tuned for throughput. Output is valid JSON but
// map key order is unspecified.
var Fast Codec = sonic.ConfigFastest

// Default returns the codec used when none is configured.
func Default() Codec {
	return Std
}

// Lookup extracts the value at a gjson path, e.g. "data.items.0.id",
// without decoding the whole document.
func Lookup(data []byte, path string) gjson.Result {
	return gjson.GetBytes(data, path)
}

// Valid reports whether data is well-formed JSON.
func Valid(data []byte) bool {
	return gjson.ValidBytes(data)
}
