// internal/mote/queue.go
package mote

import (
	"context"

	"github.com/tamzrod/swap-mote/internal/swap"
)

// Command is one deferred register write.
type Command struct {
	RegID swap.RegID
	Value swap.Value
}

// Delivery is the outcome of SaveCommand.
type Delivery int

const (
	// DeliveryPending means the command was queued until the mote can receive.
	DeliveryPending Delivery = iota
	// DeliveryAcked means the command was sent and acknowledged.
	DeliveryAcked
	// DeliveryFailed means the command was sent but not acknowledged.
	DeliveryFailed
)

func (d Delivery) String() string {
	switch d {
	case DeliveryAcked:
		return "acked"
	case DeliveryFailed:
		return "failed"
	default:
		return "pending"
	}
}

// SaveCommand sends a confirmed command now if the mote can receive it,
// otherwise appends it to the queue.
//
//	state == RXON                 -> confirmed now
//	state != RXON, no power-down  -> confirmed now
//	state != RXON, power-down     -> queued (DeliveryPending)
func (m *Mote) SaveCommand(ctx context.Context, id swap.RegID, v swap.Value) Delivery {
	m.mu.Lock()
	if m.state != swap.StateRxOn && m.pwrDownMode {
		m.queue = append(m.queue, Command{RegID: id, Value: v})
		depth := len(m.queue)
		m.mu.Unlock()

		m.log.Debug("command queued", "reg", id, "value", v, "depth", depth)
		return DeliveryPending
	}
	m.mu.Unlock()

	if m.CmdRegisterWack(ctx, id, v) {
		return DeliveryAcked
	}
	return DeliveryFailed
}

// SaveAddressCommand is SaveCommand for the device address register.
// An acknowledged change moves the local address. An address that does
// not fit the address layout is neither sent nor queued.
func (m *Mote) SaveAddressCommand(ctx context.Context, addr uint16) Delivery {
	v, ok := m.addressValue(addr)
	if !ok {
		m.log.Warn("address out of range", "addr", addr, "extended", m.extendedAddr)
		return DeliveryFailed
	}
	d := m.SaveCommand(ctx, swap.RegDeviceAddr, v)
	if d == DeliveryAcked {
		m.mu.Lock()
		m.address = addr
		m.mu.Unlock()
	}
	return d
}

// SaveTxIntervalCommand is SaveCommand for the tx interval register.
func (m *Mote) SaveTxIntervalCommand(ctx context.Context, interval uint16) Delivery {
	d := m.SaveCommand(ctx, swap.RegTxInterval, swap.NewValue(uint64(interval), txIntervalLen))
	if d == DeliveryAcked {
		m.mu.Lock()
		m.txInterval = interval
		m.mu.Unlock()
	}
	return d
}

// NumSavedCommands returns the queue length.
func (m *Mote) NumSavedCommands() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// PopSavedCommand removes and returns the oldest queued command.
func (m *Mote) PopSavedCommand() (Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Command{}, ErrQueueEmpty
	}
	c := m.queue[0]
	m.queue[0] = Command{}
	m.queue = m.queue[1:]
	return c, nil
}

// UpdateState records a newly observed state and refreshes the timestamp.
//
// On RXON or SYNC the commands queued at this moment are removed and
// transmitted fire-and-forget, oldest first. Commands queued while the
// flush runs stay for the next receiving transition.
func (m *Mote) UpdateState(state swap.State) {
	now := m.clock.Now()

	m.mu.Lock()
	prev := m.state
	m.state = state
	m.lastUpdate = now

	var batch []Command
	if state.Receiving() && len(m.queue) > 0 {
		batch = m.queue
		m.queue = nil
	}
	m.mu.Unlock()

	if prev != state {
		m.log.Info("mote state changed", "from", prev, "to", state)
	}

	for _, c := range batch {
		if _, err := m.CmdRegister(c.RegID, c.Value); err != nil {
			m.log.Warn("queued command transmit failed", "reg", c.RegID, "value", c.Value, "err", err)
			continue
		}
		if c.RegID == swap.RegDeviceAddr {
			addr := uint16(c.Value.Uint())
			m.mu.Lock()
			m.pendingAddr = &addr
			m.mu.Unlock()
		}
	}
}

// ConfirmAddress adopts addr when it matches an address change sent by a
// queue flush. The mote answers such a change from its new address, so the
// receive path calls this for DEVICE_ADDR status from unknown addresses.
func (m *Mote) ConfirmAddress(addr uint16) bool {
	m.mu.Lock()
	if m.pendingAddr == nil || *m.pendingAddr != addr {
		m.mu.Unlock()
		return false
	}
	prev := m.address
	m.address = addr
	m.pendingAddr = nil
	m.mu.Unlock()

	m.log.Info("mote address confirmed", "from", prev, "to", addr)
	return true
}
