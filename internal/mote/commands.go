// internal/mote/commands.go
package mote

import (
	"context"
	"fmt"

	"github.com/tamzrod/swap-mote/internal/swap"
)

// Value widths of the standard registers, in bytes.
const (
	addrLen        = 1
	extAddrLen     = 2
	channelLen     = 1
	secuLen        = 1
	systemStateLen = 1
	networkIDLen   = 2
	txIntervalLen  = 2
)

// ------------------------------------------------------------
// FIRE-AND-FORGET
// ------------------------------------------------------------

// CmdRegister transmits a command without waiting for a reply.
// It returns the status packet the mote is expected to answer with,
// so the caller can correlate it later.
func (m *Mote) CmdRegister(id swap.RegID, v swap.Value) (swap.Packet, error) {
	m.mu.Lock()
	addr, nonce := m.address, m.nonce
	m.mu.Unlock()

	expected := swap.NewStatusPacket(addr, id, v, m.extendedAddr)
	cmd := swap.NewCommandPacket(addr, id, v, nonce, m.extendedAddr)

	if err := m.server.Send(cmd); err != nil {
		return expected, fmt.Errorf("mote: command reg=%d: %w", id, err)
	}
	return expected, nil
}

// QryRegister transmits a query. The reply is handled by the receive path.
func (m *Mote) QryRegister(id swap.RegID) error {
	qry := swap.NewQueryPacket(m.Address(), id, m.extendedAddr)
	if err := m.server.Send(qry); err != nil {
		return fmt.Errorf("mote: query reg=%d: %w", id, err)
	}
	return nil
}

// StaRegister transmits a status packet carrying the local value of a register.
// Nothing is sent for an unknown register.
func (m *Mote) StaRegister(id swap.RegID) error {
	v, ok := m.registerValue(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegister, id)
	}

	sta := swap.NewStatusPacket(m.Address(), id, v, m.extendedAddr)
	if err := m.server.Send(sta); err != nil {
		return fmt.Errorf("mote: status reg=%d: %w", id, err)
	}
	return nil
}

// ------------------------------------------------------------
// CONFIRMED
// ------------------------------------------------------------

// CmdRegisterWack sends a command and waits for the acknowledgment.
func (m *Mote) CmdRegisterWack(ctx context.Context, id swap.RegID, v swap.Value) bool {
	return m.server.SetMoteRegister(ctx, m, id, v)
}

// QryRegisterWack sends a query and waits for the value.
// ok is false when no reply arrived.
func (m *Mote) QryRegisterWack(ctx context.Context, id swap.RegID) (swap.Value, bool) {
	return m.server.QueryMoteRegister(ctx, m, id)
}

// addressValue encodes addr at the DEVICE_ADDR width of the mote's layout.
// ok is false when addr does not fit that width.
func (m *Mote) addressValue(addr uint16) (swap.Value, bool) {
	if m.extendedAddr {
		return swap.NewValue(uint64(addr), extAddrLen), true
	}
	if addr > 0xFF {
		return swap.Value{}, false
	}
	return swap.NewValue(uint64(addr), addrLen), true
}

// SetAddress changes the mote address. The local address follows only on ack.
// Nothing is sent when addr does not fit the address layout.
func (m *Mote) SetAddress(ctx context.Context, addr uint16) bool {
	v, ok := m.addressValue(addr)
	if !ok {
		m.log.Warn("address out of range", "addr", addr, "extended", m.extendedAddr)
		return false
	}
	ok = m.CmdRegisterWack(ctx, swap.RegDeviceAddr, v)
	if ok {
		m.mu.Lock()
		m.address = addr
		m.mu.Unlock()
	}
	return ok
}

// SetNetworkID changes the network id. Not mirrored locally.
func (m *Mote) SetNetworkID(ctx context.Context, netID uint16) bool {
	return m.CmdRegisterWack(ctx, swap.RegNetworkID, swap.NewValue(uint64(netID), networkIDLen))
}

// SetFreqChannel changes the frequency channel. Not mirrored locally.
func (m *Mote) SetFreqChannel(ctx context.Context, channel uint8) bool {
	return m.CmdRegisterWack(ctx, swap.RegFreqChannel, swap.NewValue(uint64(channel), channelLen))
}

// SetSecurity changes the security option. The local value follows only on ack.
func (m *Mote) SetSecurity(ctx context.Context, secu uint8) bool {
	ok := m.CmdRegisterWack(ctx, swap.RegSecuOption, swap.NewValue(uint64(secu), secuLen))
	if ok {
		m.mu.Lock()
		m.security = secu
		m.mu.Unlock()
	}
	return ok
}

// SetTxInterval changes the periodic transmission interval. The local value follows only on ack.
func (m *Mote) SetTxInterval(ctx context.Context, interval uint16) bool {
	ok := m.CmdRegisterWack(ctx, swap.RegTxInterval, swap.NewValue(uint64(interval), txIntervalLen))
	if ok {
		m.mu.Lock()
		m.txInterval = interval
		m.mu.Unlock()
	}
	return ok
}

// Restart asks the mote to restart.
func (m *Mote) Restart(ctx context.Context) bool {
	return m.CmdRegisterWack(ctx, swap.RegSystemState, swap.NewValue(uint64(swap.StateRestart), systemStateLen))
}

// LeaveSync asks the mote to leave SYNC mode.
func (m *Mote) LeaveSync(ctx context.Context) bool {
	return m.CmdRegisterWack(ctx, swap.RegSystemState, swap.NewValue(uint64(swap.StateRxOff), systemStateLen))
}
