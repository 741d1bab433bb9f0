// internal/config/config.go
package config

type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
}

type GatewayConfig struct {
	Modem        ModemConfig        `yaml:"modem"`
	Definitions  string             `yaml:"definitions"`
	Poll         PollConfig         `yaml:"poll"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	SnapshotFile string             `yaml:"snapshot_file"`
	Motes        []MoteConfig       `yaml:"motes"`
}

// ---- MODEM ----

type ModemConfig struct {
	Port         string `yaml:"port"`
	BaudRate     int    `yaml:"baud_rate"`
	Address      uint16 `yaml:"address"` // gateway address
	AckTimeoutMs int    `yaml:"ack_timeout_ms"`
	Retries      *int   `yaml:"retries"`
	ExtendedAddr bool   `yaml:"extended_addr"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs   int `yaml:"interval_ms"`
	StaleAfterMs int `yaml:"stale_after_ms"` // 0 => 3 x mote tx interval
}

// ---- STATUS MEMORY ----

type StatusMemoryConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- MOTE ----

type MoteConfig struct {
	ID          string `yaml:"id"`
	ProductCode string `yaml:"product_code"`
	Address     uint16 `yaml:"address"`
	Security    uint8  `yaml:"security"`
	Nonce       uint8  `yaml:"nonce"`

	// Mote status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`

	// Pending changes applied at startup. A sleeping mote receives
	// them on its next RXON/SYNC.
	SetTxInterval *uint16 `yaml:"set_tx_interval"`
	SetAddress    *uint16 `yaml:"set_address"`
}
