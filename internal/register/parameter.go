// internal/register/parameter.go
package register

import (
	"strings"

	"github.com/tamzrod/swap-mote/internal/swap"
)

// ParamType is the data type of a parameter.
type ParamType string

const (
	TypeNumber ParamType = "num"
	TypeBinary ParamType = "bin"
	TypeString ParamType = "str"
)

// Direction tells whether a parameter is read from or written to the mote.
type Direction string

const (
	DirInput  Direction = "inp"
	DirOutput Direction = "out"
)

// Unit converts a raw numeric value: shown = raw*Factor + Offset.
type Unit struct {
	Name   string  `yaml:"name" json:"name"`
	Factor float64 `yaml:"factor" json:"factor"`
	Offset float64 `yaml:"offset" json:"offset"`
}

// Parameter is a named window inside its register's value.
//
// Byte fields use BytePos/ByteSize. Bit fields use BytePos/BitPos/BitSize
// and stay inside one byte; bit 0 is the least significant bit.
type Parameter struct {
	Name      string
	Type      ParamType
	Direction Direction
	BytePos   int
	ByteSize  int
	BitPos    int
	BitSize   int
	Units     []Unit

	reg *Register
}

// Register returns the register owning this parameter.
func (p *Parameter) Register() *Register { return p.reg }

// window returns the bytes covered by the parameter, or nil if out of range.
func (p *Parameter) window() []byte {
	if p.reg == nil {
		return nil
	}
	b := p.reg.Value.Bytes()

	size := p.ByteSize
	if p.BitSize > 0 {
		size = 1
	}
	if p.BytePos < 0 || size <= 0 || p.BytePos+size > len(b) {
		return nil
	}
	return b[p.BytePos : p.BytePos+size]
}

// Raw returns the unsigned integer value of the parameter.
func (p *Parameter) Raw() uint64 {
	w := p.window()
	if w == nil {
		return 0
	}
	if p.BitSize > 0 {
		mask := uint64(1)<<uint(p.BitSize) - 1
		return (uint64(w[0]) >> uint(p.BitPos)) & mask
	}
	return swap.ValueFromBytes(w).Uint()
}

// Text returns a string parameter with trailing zero bytes removed.
func (p *Parameter) Text() string {
	return strings.TrimRight(string(p.window()), "\x00")
}

// Scaled applies the first unit to the raw value.
// Without units the raw value is returned unchanged.
func (p *Parameter) Scaled() float64 {
	raw := float64(p.Raw())
	if len(p.Units) == 0 {
		return raw
	}
	u := p.Units[0]
	return raw*u.Factor + u.Offset
}
