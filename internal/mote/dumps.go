// internal/mote/dumps.go
package mote

import "github.com/tamzrod/swap-mote/internal/register"

// Snapshot is the presentation form of a mote.
type Snapshot struct {
	ProductCode  string              `json:"pcode" yaml:"pcode"`
	Manufacturer string              `json:"manufacturer" yaml:"manufacturer"`
	Name         string              `json:"name" yaml:"name"`
	Address      uint16              `json:"address" yaml:"address"`
	TxInterval   uint16              `json:"txinterval" yaml:"txinterval"`
	Registers    []register.Snapshot `json:"registers" yaml:"registers"`
}

// Map returns the snapshot as a key/value mapping.
func (s Snapshot) Map() map[string]any {
	return map[string]any{
		"pcode":        s.ProductCode,
		"manufacturer": s.Manufacturer,
		"name":         s.Name,
		"address":      s.Address,
		"txinterval":   s.TxInterval,
		"registers":    s.Registers,
	}
}

// Dumps returns a snapshot of identity, configuration and regular register values.
func (m *Mote) Dumps(includeUnits bool) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	regs := make([]register.Snapshot, 0, len(m.regular))
	for _, r := range m.regular {
		regs = append(regs, r.Dumps(includeUnits))
	}

	return Snapshot{
		ProductCode:  m.productCode,
		Manufacturer: m.definition.Manufacturer,
		Name:         m.definition.Product,
		Address:      m.address,
		TxInterval:   m.txInterval,
		Registers:    regs,
	}
}
