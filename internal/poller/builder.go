// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/swap-mote/internal/config"
)

// Build constructs the poller of one configured mote.
// Assumes config has already passed Validate and Normalize.
func Build(g cfg.GatewayConfig, m cfg.MoteConfig, target Target) (*Poller, error) {
	return New(
		Config{
			MoteID:     m.ID,
			Interval:   time.Duration(g.Poll.IntervalMs) * time.Millisecond,
			StaleAfter: time.Duration(g.Poll.StaleAfterMs) * time.Millisecond,
		},
		target,
	)
}
