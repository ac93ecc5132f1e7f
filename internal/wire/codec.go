// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

package wire

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/samber/oops"
)

// Decoder reads newline-delimited wire objects from a stream. The envelope
// format is transport plumbing only; it is not part of the protocol contract.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Decode reads the next object from the stream. Returns io.EOF unchanged when
// the stream ends cleanly so callers can distinguish disconnect from garbage.
func (d *Decoder) Decode() (*Object, error) {
	obj := NewObject()
	if err := d.dec.Decode(obj); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, oops.Code("WIRE_DECODE_FAILED").Wrap(err)
	}
	return obj, nil
}

// Encoder writes newline-delimited wire objects to a stream.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Encode writes one object followed by a newline.
func (e *Encoder) Encode(obj *Object) error {
	if err := e.enc.Encode(obj); err != nil {
		return oops.Code("WIRE_ENCODE_FAILED").Wrap(err)
	}
	return nil
}
