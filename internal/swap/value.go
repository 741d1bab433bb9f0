// internal/swap/value.go
package swap

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Value is a fixed-width register value, big-endian on the wire.
type Value struct {
	b []byte
}

// NewValue encodes v into exactly length bytes.
// High-order bytes that do not fit are dropped.
func NewValue(v uint64, length int) Value {
	if length < 0 {
		length = 0
	}
	b := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return Value{b: b}
}

// ValueFromBytes copies b into a new Value.
func ValueFromBytes(b []byte) Value {
	out := make([]byte, len(b))
	copy(out, b)
	return Value{b: out}
}

// ValueFromString stores s as raw ASCII, padded with zeros to length.
// A length of 0 keeps len(s).
func ValueFromString(s string, length int) Value {
	if length <= 0 {
		length = len(s)
	}
	b := make([]byte, length)
	copy(b, s)
	return Value{b: b}
}

// Bytes returns a copy of the raw bytes.
func (v Value) Bytes() []byte {
	out := make([]byte, len(v.b))
	copy(out, v.b)
	return out
}

// Len returns the width in bytes.
func (v Value) Len() int { return len(v.b) }

// Uint interprets the value as a big-endian unsigned integer.
// Only the last 8 bytes contribute.
func (v Value) Uint() uint64 {
	var out uint64
	for _, c := range v.b {
		out = out<<8 | uint64(c)
	}
	return out
}

// Equal reports whether both values carry the same bytes.
func (v Value) Equal(o Value) bool {
	return bytes.Equal(v.b, o.b)
}

// String returns the value as uppercase hex.
func (v Value) String() string {
	return strings.ToUpper(hex.EncodeToString(v.b))
}
