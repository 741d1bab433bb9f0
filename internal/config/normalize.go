// internal/config/normalize.go
package config

const (
	DefaultBaudRate     = 38400
	DefaultAckTimeoutMs = 2000
	DefaultRetries      = 3
	DefaultPollMs       = 1000
	DefaultStatusMs     = 1000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	g := &cfg.Gateway

	// ------------------------------------------------------------
	// MODEM DEFAULTS
	// ------------------------------------------------------------

	if g.Modem.BaudRate == 0 {
		g.Modem.BaudRate = DefaultBaudRate
	}
	if g.Modem.AckTimeoutMs == 0 {
		g.Modem.AckTimeoutMs = DefaultAckTimeoutMs
	}
	if g.Modem.Retries == nil {
		r := DefaultRetries
		g.Modem.Retries = &r
	}

	// ------------------------------------------------------------
	// POLL / STATUS MEMORY DEFAULTS
	// ------------------------------------------------------------

	if g.Poll.IntervalMs == 0 {
		g.Poll.IntervalMs = DefaultPollMs
	}
	if g.StatusMemory.TimeoutMs == 0 {
		g.StatusMemory.TimeoutMs = DefaultStatusMs
	}

	// Mote ids are keys and stay intact; the status writer cuts the
	// name it places in the block.
}
