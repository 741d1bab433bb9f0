// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/swap-mote/internal/status"
)

// liveSlots is the number of leading slots diffed on incremental writes.
const liveSlots = status.SlotSecondsSinceUpdate + 1

type moteStatusWriter struct {
	plan StatusPlan
	cli  endpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// NewMoteStatusWriter builds the writer for one mote block.
func NewMoteStatusWriter(plan StatusPlan, clients map[string]endpointClient) (StatusWriter, error) {
	cli := clients[plan.Endpoint]
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseSlot)*status.SlotsPerMote > 0xFFFF-status.SlotsPerMote {
		return nil, fmt.Errorf("status writer: base slot %d out of range", plan.BaseSlot)
	}

	return &moteStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: status.EncodeName(plan.MoteID),
	}, nil
}

// WriteStatus delivers one block into status memory.
// After any write failure the next call re-asserts the full block.
func (sw *moteStatusWriter) WriteStatus(b status.Block) error {
	regs := status.Encode(b)
	base := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		copy(regs[status.SlotNameStart:], sw.nameRegs)

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = regs[:liveSlots]
		return nil
	}

	var errs []string

	for slot := 0; slot < liveSlots; slot++ {
		if sw.last[slot] == regs[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			base+uint16(slot),
			[]uint16{regs[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
			continue
		}
		sw.last[slot] = regs[slot]
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *moteStatusWriter) baseAddr() uint16 {
	return sw.plan.BaseSlot * status.SlotsPerMote
}
