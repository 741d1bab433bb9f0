// internal/writer/types.go
package writer

import "github.com/tamzrod/swap-mote/internal/status"

// StatusPlan is where one mote's status block lives in status memory.
type StatusPlan struct {
	MoteID   string // written into the name slots
	Endpoint string
	UnitID   uint8
	BaseSlot uint16 // block index; register address = BaseSlot * SlotsPerMote
}

// StatusWriter is the delivery-only contract for mote status.
// It receives a block and writes it verbatim.
type StatusWriter interface {
	WriteStatus(b status.Block) error
}

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
