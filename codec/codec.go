// Package codec encodes shape inputs and outputs for the transport boundary.
//
// MessagePack is the wire default: compact, self-describing, field-name
// keyed, so payloads tolerate schema evolution. JSON is kept for debugging
// tooling.
package codec

import (
	"encoding/json"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts between typed records and transport bytes.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	// ContentType is the MIME type for HTTP framing.
	ContentType() string
}

// Msgpack is the field-name-keyed MessagePack codec.
type Msgpack struct{}

// Encode implements Codec.
func (Msgpack) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode implements Codec.
func (Msgpack) Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// ContentType implements Codec.
func (Msgpack) ContentType() string { return "application/msgpack" }

// JSON is a plain text codec for debugging tooling.
type JSON struct{}

// Encode implements Codec.
func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements Codec.
func (JSON) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType implements Codec.
func (JSON) ContentType() string { return "application/json" }

// ForContentType returns the codec matching an HTTP content type, defaulting
// to MessagePack. Media type parameters such as charset are ignored.
func ForContentType(ct string) Codec {
	if strings.HasPrefix(strings.TrimSpace(ct), "application/json") {
		return JSON{}
	}
	return Msgpack{}
}
