// internal/swap/packet_test.go
package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValue_FixedWidth(t *testing.T) {
	assert.Equal(t, []byte{0x05}, NewValue(5, 1).Bytes())
	assert.Equal(t, []byte{0x00, 0x3C}, NewValue(60, 2).Bytes())

	// high-order bytes are dropped
	assert.Equal(t, []byte{0x34}, NewValue(0x1234, 1).Bytes())

	v := NewValue(0x0102, 4)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, uint64(0x0102), v.Uint())
	assert.Equal(t, "00000102", v.String())
}

func TestValueFromString_Pads(t *testing.T) {
	v := ValueFromString("ab", 4)
	assert.Equal(t, []byte{'a', 'b', 0, 0}, v.Bytes())
	assert.Equal(t, 3, ValueFromString("abc", 0).Len())
}

func TestCommandPacket_StandardLayout(t *testing.T) {
	p := NewCommandPacket(5, RegTxInterval, NewValue(60, 2), 7, false)
	p.Source = 1

	assert.Equal(t,
		[]byte{0x05, 0x01, 0x00, 0x07, 0x02, 0x05, 0x0A, 0x00, 0x3C},
		p.Encode(),
	)
	assert.Equal(t, "0501000702050A003C", p.Hex())
}

func TestCommandPacket_ExtendedLayout(t *testing.T) {
	p := NewCommandPacket(0x0102, RegDeviceAddr, NewValue(9, 1), 3, true)
	p.Source = 0x0001

	assert.Equal(t,
		[]byte{0x01, 0x02, 0x00, 0x01, 0x00, 0x03, 0x82, 0x01, 0x02, 0x09, 0x09},
		p.Encode(),
	)
}

func TestDecode_StandardStatus(t *testing.T) {
	raw := NewStatusPacket(5, RegSystemState, NewValue(uint64(StateRxOn), 1), false).Encode()

	p, err := Decode(raw, false)
	require.NoError(t, err)

	assert.Equal(t, FuncStatus, p.Function)
	assert.Equal(t, uint16(5), p.Source)
	assert.Equal(t, uint16(5), p.RegAddr)
	assert.Equal(t, RegSystemState, p.RegID)
	assert.Equal(t, uint64(StateRxOn), p.Value.Uint())
	assert.False(t, p.Extended)
}

func TestDecode_Extended(t *testing.T) {
	in := NewQueryPacket(0x0A0B, RegTxInterval, true)
	in.Source = 0x0001
	in.Hop = 2
	in.Secu = 1

	p, err := Decode(in.Encode(), true)
	require.NoError(t, err)

	assert.True(t, p.Extended)
	assert.Equal(t, uint16(0x0A0B), p.Dest)
	assert.Equal(t, uint16(0x0001), p.Source)
	assert.Equal(t, uint8(2), p.Hop)
	assert.Equal(t, uint8(1), p.Secu)
	assert.Equal(t, FuncQuery, p.Function)
	assert.Equal(t, 0, p.Value.Len())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, false)
	assert.ErrorIs(t, err, ErrShortPacket)

	_, err = Decode([]byte{0, 1, 0, 0, 0, 0, 2, 0, 5, 9}, true)
	assert.Error(t, err, "missing extended flag must be rejected")

	_, err = DecodeHex("ZZ", false)
	assert.Error(t, err)
}

func TestDecode_StandardRejectsExtendedFlag(t *testing.T) {
	_, err := Decode([]byte{0, 5, 0, 0, 0x80, 5, 3, 1}, false)
	assert.Error(t, err)
}

func TestPacketCheck_AddressRange(t *testing.T) {
	assert.NoError(t, NewQueryPacket(0xFF, RegTxInterval, false).Check())
	assert.ErrorIs(t, NewQueryPacket(0x100, RegTxInterval, false).Check(), ErrAddrRange)
	assert.NoError(t, NewQueryPacket(0x100, RegTxInterval, true).Check())

	p := NewQueryPacket(5, RegTxInterval, false)
	p.Source = 300
	assert.ErrorIs(t, p.Check(), ErrAddrRange)
}

func TestState_Receiving(t *testing.T) {
	assert.True(t, StateRxOn.Receiving())
	assert.True(t, StateSync.Receiving())
	assert.False(t, StateRxOff.Receiving())
	assert.False(t, StateRestart.Receiving())
	assert.False(t, StateLowBat.Receiving())
	assert.Equal(t, "STATE(9)", State(9).String())
}
