package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errInvalid = errors.New("invalid JSON value")

// Kind identifies which member of the JSON union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a single validated JSON value stored in compact form.
// Object key order and number literals are kept exactly as received.
type Value struct {
	raw json.RawMessage
}

// NewValue validates data as exactly one JSON value and compacts it.
func NewValue(data []byte) (Value, error) {
	if !json.Valid(data) {
		return Value{}, errInvalid
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Value{}, fmt.Errorf("compact JSON value: %w", err)
	}
	return Value{raw: buf.Bytes()}, nil
}

// MustValue is NewValue that panics on invalid input. It is meant for tests
// and literals.
func MustValue(data string) Value {
	v, err := NewValue([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

// Kind reports the union member held by v. The zero Value is null.
func (v Value) Kind() Kind {
	if len(v.raw) == 0 {
		return KindNull
	}
	switch v.raw[0] {
	case '{':
		return KindObject
	case '[':
		return KindArray
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	}
	return KindNumber
}

// Bytes returns the compact encoding of v. The zero Value encodes as null.
func (v Value) Bytes() []byte {
	if len(v.raw) == 0 {
		return []byte("null")
	}
	return bytes.Clone(v.raw)
}

// String returns the compact encoding of v.
func (v Value) String() string {
	return string(v.Bytes())
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := NewValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
