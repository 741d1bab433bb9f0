// internal/swap/packet.go
package swap

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// extendedFlag marks the extended address layout in the function byte.
const extendedFlag byte = 0x80

// Minimum packet sizes (no value bytes).
const (
	headerSize         = 7
	extendedHeaderSize = 10
)

var (
	ErrShortPacket = errors.New("swap: packet too short")
	ErrAddrRange   = errors.New("swap: address does not fit the standard layout")
)

// Packet is one SWAP packet.
//
// Standard layout:
//
//	dest(1) | src(1) | hop<<4|secu(1) | nonce(1) | func(1) | regaddr(1) | regid(1) | value(n)
//
// Extended layout widens every address field to 2 bytes and sets 0x80 in func.
type Packet struct {
	Dest     uint16
	Source   uint16
	Hop      uint8
	Secu     uint8
	Nonce    uint8
	Function Function
	RegAddr  uint16
	RegID    RegID
	Value    Value
	Extended bool
}

// NewStatusPacket builds a status packet reporting value for register id of addr.
func NewStatusPacket(addr uint16, id RegID, value Value, extended bool) Packet {
	return Packet{
		Dest:     BroadcastAddr,
		Source:   addr,
		Function: FuncStatus,
		RegAddr:  addr,
		RegID:    id,
		Value:    value,
		Extended: extended,
	}
}

// NewQueryPacket builds a query for register id of dest.
func NewQueryPacket(dest uint16, id RegID, extended bool) Packet {
	return Packet{
		Dest:     dest,
		Function: FuncQuery,
		RegAddr:  dest,
		RegID:    id,
		Extended: extended,
	}
}

// NewCommandPacket builds a command writing value into register id of dest.
func NewCommandPacket(dest uint16, id RegID, value Value, nonce uint8, extended bool) Packet {
	return Packet{
		Dest:     dest,
		Nonce:    nonce,
		Function: FuncCommand,
		RegAddr:  dest,
		RegID:    id,
		Value:    value,
		Extended: extended,
	}
}

// Check reports addresses that the packet layout cannot carry.
func (p Packet) Check() error {
	if p.Extended {
		return nil
	}
	if p.Dest > 0xFF || p.Source > 0xFF || p.RegAddr > 0xFF {
		return fmt.Errorf("%w: dest=%d src=%d regaddr=%d", ErrAddrRange, p.Dest, p.Source, p.RegAddr)
	}
	return nil
}

// Encode serializes the packet.
// The standard layout keeps only the low byte of each address; Check first.
func (p Packet) Encode() []byte {
	hopSecu := p.Hop<<4 | p.Secu&0x0F
	val := p.Value.Bytes()

	if !p.Extended {
		out := make([]byte, 0, headerSize+len(val))
		out = append(out,
			byte(p.Dest),
			byte(p.Source),
			hopSecu,
			p.Nonce,
			byte(p.Function),
			byte(p.RegAddr),
			byte(p.RegID),
		)
		return append(out, val...)
	}

	out := make([]byte, 0, extendedHeaderSize+len(val))
	out = append(out,
		byte(p.Dest>>8), byte(p.Dest),
		byte(p.Source>>8), byte(p.Source),
		hopSecu,
		p.Nonce,
		byte(p.Function)|extendedFlag,
		byte(p.RegAddr>>8), byte(p.RegAddr),
		byte(p.RegID),
	)
	return append(out, val...)
}

// Hex returns the uppercase hex form used on the modem serial line.
func (p Packet) Hex() string {
	return strings.ToUpper(hex.EncodeToString(p.Encode()))
}

// Decode parses a raw packet in the given address layout.
// The layout cannot be inferred from the bytes alone, so the network setting decides it.
func Decode(b []byte, extended bool) (Packet, error) {
	if !extended {
		if len(b) < headerSize {
			return Packet{}, ErrShortPacket
		}
		if b[4]&extendedFlag != 0 {
			return Packet{}, fmt.Errorf("swap: extended flag on standard packet (func=0x%02X)", b[4])
		}
		return Packet{
			Dest:     uint16(b[0]),
			Source:   uint16(b[1]),
			Hop:      b[2] >> 4,
			Secu:     b[2] & 0x0F,
			Nonce:    b[3],
			Function: Function(b[4]),
			RegAddr:  uint16(b[5]),
			RegID:    RegID(b[6]),
			Value:    ValueFromBytes(b[headerSize:]),
		}, nil
	}

	if len(b) < extendedHeaderSize {
		return Packet{}, ErrShortPacket
	}
	if b[6]&extendedFlag == 0 {
		return Packet{}, fmt.Errorf("swap: extended flag missing (func=0x%02X)", b[6])
	}

	return Packet{
		Dest:     uint16(b[0])<<8 | uint16(b[1]),
		Source:   uint16(b[2])<<8 | uint16(b[3]),
		Hop:      b[4] >> 4,
		Secu:     b[4] & 0x0F,
		Nonce:    b[5],
		Function: Function(b[6] &^ extendedFlag),
		RegAddr:  uint16(b[7])<<8 | uint16(b[8]),
		RegID:    RegID(b[9]),
		Value:    ValueFromBytes(b[extendedHeaderSize:]),
		Extended: true,
	}, nil
}

// DecodeHex parses the hex text form of a packet.
func DecodeHex(s string, extended bool) (Packet, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Packet{}, fmt.Errorf("swap: bad hex: %w", err)
	}
	return Decode(b, extended)
}

func (p Packet) String() string {
	return fmt.Sprintf(
		"%s dest=%d src=%d nonce=%d regaddr=%d reg=%d value=%s",
		p.Function, p.Dest, p.Source, p.Nonce, p.RegAddr, p.RegID, p.Value,
	)
}
