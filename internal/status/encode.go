// internal/status/encode.go
package status

// Encode converts a Block into the live slots of a full status block.
// Name slots are left zero; the writer fills them.
// No IO. No side effects.
func Encode(b Block) []uint16 {
	regs := make([]uint16, SlotsPerMote)

	regs[SlotHealthCode] = b.Health
	regs[SlotAddress] = b.Address
	regs[SlotState] = b.State
	regs[SlotQueueDepth] = b.QueueDepth
	regs[SlotTxInterval] = b.TxInterval
	regs[SlotSecurity] = b.Security
	regs[SlotSecondsSinceUpdate] = b.SecondsSinceUpdate

	return regs
}

// EncodeName packs up to NameMaxChars ASCII characters into SlotNameSlots registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotNameSlots)

	b := []byte(name)
	if len(b) > NameMaxChars {
		b = b[:NameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < NameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
