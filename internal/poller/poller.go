// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/tamzrod/swap-mote/internal/status"
	"github.com/tamzrod/swap-mote/internal/swap"
)

// staleFactor is how many tx intervals a mote may stay silent before it is stale.
const staleFactor = 3

// Config is the minimal runtime config the poller needs.
type Config struct {
	MoteID     string
	Interval   time.Duration
	StaleAfter time.Duration // 0 => staleFactor x mote tx interval
	Now        func() time.Time
}

// Poller is a dumb, clock-driven reader of mote state.
type Poller struct {
	cfg    Config
	target Target
}

// New creates a poller with immutable config.
func New(cfg Config, target Target) (*Poller, error) {
	if cfg.MoteID == "" {
		return nil, errors.New("poller: mote id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.StaleAfter < 0 {
		return nil, errors.New("poller: stale_after must be >= 0")
	}
	if target == nil {
		return nil, errors.New("poller: target required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Poller{cfg: cfg, target: target}, nil
}

// PollOnce reads the mote once. It never blocks on the radio.
func (p *Poller) PollOnce() PollResult {
	now := p.cfg.Now()
	t := p.target

	state := t.State()
	txInterval := t.TxInterval()
	age := now.Sub(t.LastUpdate())
	if age < 0 {
		age = 0
	}

	res := PollResult{MoteID: p.cfg.MoteID, At: now}
	res.Block = status.Block{
		Health:             p.health(state, txInterval, age),
		Address:            t.Address(),
		State:              uint16(state),
		QueueDepth:         saturate(int64(t.NumSavedCommands())),
		TxInterval:         txInterval,
		Security:           uint16(t.Security()),
		SecondsSinceUpdate: saturate(int64(age / time.Second)),
	}
	return res
}

func (p *Poller) health(state swap.State, txInterval uint16, age time.Duration) uint16 {
	window := p.cfg.StaleAfter
	if window == 0 {
		window = time.Duration(txInterval) * time.Second * staleFactor
	}

	switch {
	case window == 0:
		return status.HealthUnknown
	case age > window:
		return status.HealthStale
	case state == swap.StateLowBat:
		return status.HealthLowBattery
	default:
		return status.HealthOK
	}
}

// saturate clamps v into a status register.
func saturate(v int64) uint16 {
	if v > status.MaxSeconds {
		return status.MaxSeconds
	}
	return uint16(v)
}
