// internal/config/validate.go
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// statusSlotsPerMote mirrors the status block size; config must not import runtime packages.
const statusSlotsPerMote = 20

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	g := cfg.Gateway

	// ------------------------------------------------------------
	// MODEM
	// ------------------------------------------------------------

	if g.Modem.Port == "" {
		return errors.New("modem: port required")
	}
	if g.Modem.BaudRate < 0 {
		return fmt.Errorf("modem: baud_rate %d must be >= 0", g.Modem.BaudRate)
	}
	if g.Modem.AckTimeoutMs < 0 {
		return fmt.Errorf("modem: ack_timeout_ms %d must be >= 0", g.Modem.AckTimeoutMs)
	}
	if g.Modem.Retries != nil && *g.Modem.Retries < 0 {
		return fmt.Errorf("modem: retries %d must be >= 0", *g.Modem.Retries)
	}
	if !g.Modem.ExtendedAddr && g.Modem.Address > 0xFF {
		return fmt.Errorf("modem: address %d needs extended_addr", g.Modem.Address)
	}

	if g.Definitions == "" {
		return errors.New("gateway: definitions directory required")
	}
	if g.Poll.IntervalMs < 0 || g.Poll.StaleAfterMs < 0 {
		return errors.New("poll: interval_ms and stale_after_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// MOTES
	// ------------------------------------------------------------

	ids := make(map[string]struct{})
	addrs := make(map[uint16]string)
	slots := make(map[uint16]string)
	var targets []MoteConfig
	statusUsed := false

	for _, m := range g.Motes {
		if m.ID == "" {
			return errors.New("mote: id required")
		}
		// id sanity (ASCII only)
		for i := 0; i < len(m.ID); i++ {
			if m.ID[i] > 0x7F {
				return fmt.Errorf("mote %q: id must contain ASCII characters only", m.ID)
			}
		}
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("mote %q: duplicate id", m.ID)
		}
		ids[m.ID] = struct{}{}

		if len(m.ProductCode) != 16 {
			return fmt.Errorf("mote %q: product_code must be 16 hex characters", m.ID)
		}
		if _, err := hex.DecodeString(m.ProductCode); err != nil {
			return fmt.Errorf("mote %q: product_code: %w", m.ID, err)
		}

		if !g.Modem.ExtendedAddr && m.Address > 0xFF {
			return fmt.Errorf("mote %q: address %d needs extended_addr", m.ID, m.Address)
		}
		if prev, dup := addrs[m.Address]; dup {
			return fmt.Errorf("address collision: address=%d used by motes %q and %q", m.Address, prev, m.ID)
		}
		addrs[m.Address] = m.ID

		if m.SetTxInterval != nil && *m.SetTxInterval == 0 {
			return fmt.Errorf("mote %q: set_tx_interval must be > 0", m.ID)
		}
		if m.SetAddress != nil {
			if !g.Modem.ExtendedAddr && *m.SetAddress > 0xFF {
				return fmt.Errorf("mote %q: set_address %d needs extended_addr", m.ID, *m.SetAddress)
			}
			targets = append(targets, m)
		}

		// status is opt-in
		if m.StatusSlot == nil {
			continue
		}
		statusUsed = true

		slot := *m.StatusSlot
		if int(slot)*statusSlotsPerMote+statusSlotsPerMote > 0x10000 {
			return fmt.Errorf("mote %q: status_slot %d out of register range", m.ID, slot)
		}
		if prev, dup := slots[slot]; dup {
			return fmt.Errorf("status_slot collision: slot=%d used by motes %q and %q", slot, prev, m.ID)
		}
		slots[slot] = m.ID
	}

	// a new address must not land on another mote's current or new address
	newAddrs := make(map[uint16]string)
	for _, m := range targets {
		a := *m.SetAddress
		if owner, taken := addrs[a]; taken && owner != m.ID {
			return fmt.Errorf("mote %q: set_address %d is the address of mote %q", m.ID, a, owner)
		}
		if prev, dup := newAddrs[a]; dup {
			return fmt.Errorf("set_address collision: address=%d requested by motes %q and %q", a, prev, m.ID)
		}
		newAddrs[a] = m.ID
	}

	// ------------------------------------------------------------
	// STATUS MEMORY
	// ------------------------------------------------------------

	if statusUsed && g.StatusMemory.Endpoint == "" {
		return errors.New("status_memory: endpoint required when a mote sets status_slot")
	}

	return nil
}
