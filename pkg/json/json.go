// Package json provides pooled JSON encoding on top of goccy/go-json, used
// for the JSON forms of values and arrays.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/isis-group/isis-sub000/pkg/pool"
)

type (
	// RawMessage is a raw encoded JSON value.
	RawMessage = gojson.RawMessage
	// Number is a JSON number literal kept as text.
	Number = gojson.Number
)

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return pool.GetBuffer()
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	pool.PutBuffer(buf)
}

// NewEncoder creates an encoder that does not escape HTML.
func NewEncoder(w io.Writer) *gojson.Encoder {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return append([]byte(nil), out...), nil
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// UnmarshalNumbers decodes data like Unmarshal, but keeps numbers inside
// interface values as Number so integers survive without rounding.
func UnmarshalNumbers(data []byte, v interface{}) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// MarshalToWriter marshals v directly to a writer, followed by a newline.
func MarshalToWriter(w io.Writer, v interface{}) error {
	return NewEncoder(w).Encode(v)
}

// StreamingEncoder writes a sequence of values either as one JSON array or
// as newline delimited JSON.
type StreamingEncoder struct {
	writer      io.Writer
	encoder     *gojson.Encoder
	firstRecord bool
	isArray     bool
	pretty      bool
}

// NewStreamingEncoder creates a new streaming encoder
func NewStreamingEncoder(w io.Writer, isArray bool) (*StreamingEncoder, error) {
	se := &StreamingEncoder{
		writer:      w,
		encoder:     NewEncoder(w),
		firstRecord: true,
		isArray:     isArray,
	}
	if isArray {
		if _, err := w.Write([]byte{'['}); err != nil {
			return nil, err
		}
	}
	return se, nil
}

// SetPretty enables pretty printing
func (se *StreamingEncoder) SetPretty(pretty bool, indent string) {
	se.pretty = pretty
	if pretty {
		se.encoder.SetIndent("", indent)
	}
}

// Encode encodes a single value
func (se *StreamingEncoder) Encode(v interface{}) error {
	if se.isArray {
		if !se.firstRecord {
			if _, err := se.writer.Write([]byte{','}); err != nil {
				return err
			}
		}
		se.firstRecord = false
	}
	return se.encoder.Encode(v)
}

// Close finalizes the encoding
func (se *StreamingEncoder) Close() error {
	if !se.isArray {
		return nil
	}
	_, err := se.writer.Write([]byte{']', '\n'})
	return err
}
