// internal/swap/defs.go
package swap

import "fmt"

// SWAP protocol constants.
// These values are defined by the protocol and MUST NOT be configurable.

// ---- REGISTER IDS ----

// RegID identifies a register on a mote.
type RegID uint8

const (
	RegProductCode RegID = 0
	RegHwVersion   RegID = 1
	RegFwVersion   RegID = 2
	RegSystemState RegID = 3
	RegFreqChannel RegID = 4
	RegSecuOption  RegID = 5
	RegPassword    RegID = 6
	RegSecuNonce   RegID = 7
	RegNetworkID   RegID = 8
	RegDeviceAddr  RegID = 9
	RegTxInterval  RegID = 10
)

// ---- SYSTEM STATES ----

// State is the power/operating state reported by a mote.
type State uint8

const (
	StateRestart State = 0
	StateRxOn    State = 1
	StateRxOff   State = 2
	StateSync    State = 3
	StateLowBat  State = 4
)

// Receiving reports whether a mote in this state accepts inbound packets.
func (s State) Receiving() bool {
	return s == StateRxOn || s == StateSync
}

func (s State) String() string {
	switch s {
	case StateRestart:
		return "RESTART"
	case StateRxOn:
		return "RXON"
	case StateRxOff:
		return "RXOFF"
	case StateSync:
		return "SYNC"
	case StateLowBat:
		return "LOWBAT"
	default:
		return fmt.Sprintf("STATE(%d)", uint8(s))
	}
}

// ---- FUNCTION CODES ----

// Function is the packet function code.
type Function uint8

const (
	FuncStatus  Function = 0
	FuncQuery   Function = 1
	FuncCommand Function = 2
)

func (f Function) String() string {
	switch f {
	case FuncStatus:
		return "STATUS"
	case FuncQuery:
		return "QUERY"
	case FuncCommand:
		return "COMMAND"
	default:
		return fmt.Sprintf("FUNC(%d)", uint8(f))
	}
}

// BroadcastAddr is the address reached by every mote.
const BroadcastAddr uint16 = 0

// DefaultMoteAddr is the address of a mote that has not been configured yet.
const DefaultMoteAddr uint16 = 0xFF
