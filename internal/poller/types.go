// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/swap-mote/internal/status"
	"github.com/tamzrod/swap-mote/internal/swap"
)

// Target is the read-only view of a mote the poller needs.
type Target interface {
	Address() uint16
	State() swap.State
	TxInterval() uint16
	Security() uint8
	NumSavedCommands() int
	LastUpdate() time.Time
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	MoteID string
	At     time.Time
	Block  status.Block
}
