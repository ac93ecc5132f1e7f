// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Pegasus Contributors

// Package wire implements the typed-field message format exchanged with game
// clients. A message is an Object: a positional container of Fields, each of
// which holds an int, a string, or a nested Object. Accessors return decode
// errors on kind mismatch instead of panicking, so a malformed client message
// can never take the connection handler down.
package wire

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/samber/oops"
)

// Kind identifies the runtime type held by a Field.
type Kind uint8

// Field kinds.
const (
	KindInvalid Kind = iota
	KindInt
	KindString
	KindObject
)

// String returns the kind name used in decode errors.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Field is a tagged union over the three wire value types. The zero Field has
// KindInvalid and fails every accessor.
type Field struct {
	kind Kind
	num  int64
	str  string
	obj  *Object
}

// IntField creates a field holding an integer.
func IntField(v int64) Field {
	return Field{kind: KindInt, num: v}
}

// StringField creates a field holding a string.
func StringField(s string) Field {
	return Field{kind: KindString, str: s}
}

// ObjectField creates a field holding a nested object.
func ObjectField(o *Object) Field {
	return Field{kind: KindObject, obj: o}
}

// Kind returns the kind of value the field holds.
func (f Field) Kind() Kind {
	return f.kind
}

// AsInt returns the integer value, or a decode error if the field holds
// something else.
func (f Field) AsInt() (int64, error) {
	if f.kind != KindInt {
		return 0, oops.Code("WIRE_TYPE_MISMATCH").
			With("want", KindInt.String()).
			With("got", f.kind.String()).
			Errorf("field is not an int")
	}
	return f.num, nil
}

// AsString returns the string value, or a decode error if the field holds
// something else.
func (f Field) AsString() (string, error) {
	if f.kind != KindString {
		return "", oops.Code("WIRE_TYPE_MISMATCH").
			With("want", KindString.String()).
			With("got", f.kind.String()).
			Errorf("field is not a string")
	}
	return f.str, nil
}

// AsObject returns the nested object, or a decode error if the field holds
// something else.
func (f Field) AsObject() (*Object, error) {
	if f.kind != KindObject {
		return nil, oops.Code("WIRE_TYPE_MISMATCH").
			With("want", KindObject.String()).
			With("got", f.kind.String()).
			Errorf("field is not an object")
	}
	return f.obj, nil
}

// Object is a positional container of typed fields.
type Object struct {
	fields map[uint8]Field
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[uint8]Field)}
}

// Set stores a field at the given index, replacing any existing field.
func (o *Object) Set(idx uint8, f Field) {
	if o.fields == nil {
		o.fields = make(map[uint8]Field)
	}
	o.fields[idx] = f
}

// Get returns the field at the given index.
func (o *Object) Get(idx uint8) (Field, error) {
	f, ok := o.fields[idx]
	if !ok {
		return Field{}, oops.Code("WIRE_FIELD_MISSING").
			With("index", int(idx)).
			Errorf("field %d is missing", idx)
	}
	return f, nil
}

// Len returns the number of fields set on the object.
func (o *Object) Len() int {
	return len(o.fields)
}

// IntAt returns the integer at the given index.
func (o *Object) IntAt(idx uint8) (int64, error) {
	f, err := o.Get(idx)
	if err != nil {
		return 0, err
	}
	return f.AsInt()
}

// StringAt returns the string at the given index.
func (o *Object) StringAt(idx uint8) (string, error) {
	f, err := o.Get(idx)
	if err != nil {
		return "", err
	}
	return f.AsString()
}

// ObjectAt returns the nested object at the given index.
func (o *Object) ObjectAt(idx uint8) (*Object, error) {
	f, err := o.Get(idx)
	if err != nil {
		return nil, err
	}
	return f.AsObject()
}

// fieldJSON is the serialized form of a Field.
type fieldJSON struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v"`
}

// MarshalJSON encodes the field as {"t": kind, "v": value}.
func (f Field) MarshalJSON() ([]byte, error) {
	var v any
	switch f.kind {
	case KindInt:
		v = f.num
	case KindString:
		v = f.str
	case KindObject:
		v = f.obj
	default:
		return nil, oops.Code("WIRE_ENCODE_FAILED").Errorf("cannot encode invalid field")
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, oops.Code("WIRE_ENCODE_FAILED").Wrap(err)
	}
	return json.Marshal(fieldJSON{T: f.kind.String(), V: raw})
}

// UnmarshalJSON decodes a field from its {"t", "v"} form.
func (f *Field) UnmarshalJSON(data []byte) error {
	var fj fieldJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return oops.Code("WIRE_DECODE_FAILED").Wrap(err)
	}

	switch fj.T {
	case KindInt.String():
		var n int64
		if err := json.Unmarshal(fj.V, &n); err != nil {
			return oops.Code("WIRE_DECODE_FAILED").With("kind", fj.T).Wrap(err)
		}
		*f = IntField(n)
	case KindString.String():
		var s string
		if err := json.Unmarshal(fj.V, &s); err != nil {
			return oops.Code("WIRE_DECODE_FAILED").With("kind", fj.T).Wrap(err)
		}
		*f = StringField(s)
	case KindObject.String():
		obj := NewObject()
		if err := json.Unmarshal(fj.V, obj); err != nil {
			return oops.Code("WIRE_DECODE_FAILED").With("kind", fj.T).Wrap(err)
		}
		*f = ObjectField(obj)
	default:
		return oops.Code("WIRE_DECODE_FAILED").
			With("kind", fj.T).
			Errorf("unknown field kind %q", fj.T)
	}
	return nil
}

// MarshalJSON encodes the object as a map of decimal indexes to fields.
func (o *Object) MarshalJSON() ([]byte, error) {
	m := make(map[string]Field, len(o.fields))
	for idx, f := range o.fields {
		m[strconv.Itoa(int(idx))] = f
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object from its index-keyed map form.
func (o *Object) UnmarshalJSON(data []byte) error {
	var m map[string]Field
	if err := json.Unmarshal(data, &m); err != nil {
		return oops.Code("WIRE_DECODE_FAILED").Wrap(err)
	}

	fields := make(map[uint8]Field, len(m))
	for key, f := range m {
		idx, err := strconv.ParseUint(key, 10, 8)
		if err != nil {
			return oops.Code("WIRE_DECODE_FAILED").
				With("index", key).
				Errorf("invalid field index %q", key)
		}
		fields[uint8(idx)] = f
	}
	o.fields = fields
	return nil
}

// Indexes returns the set field indexes in ascending order. Used by tests and
// diagnostics; the handshake itself addresses fields directly.
func (o *Object) Indexes() []uint8 {
	out := make([]uint8, 0, len(o.fields))
	for idx := range o.fields {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
