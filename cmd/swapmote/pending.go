// cmd/swapmote/pending.go
package main

import (
	"context"
	"log/slog"

	"github.com/tamzrod/swap-mote/internal/config"
	"github.com/tamzrod/swap-mote/internal/mote"
)

// applyPending hands the configured changes of one mote to its command queue.
// The address goes last: queued commands are sent to the address the mote
// had when they were flushed.
func applyPending(ctx context.Context, m *mote.Mote, mc config.MoteConfig, logger *slog.Logger) {
	if mc.SetTxInterval != nil && *mc.SetTxInterval != m.TxInterval() {
		d := m.SaveTxIntervalCommand(ctx, *mc.SetTxInterval)
		logger.Info("tx interval change", "mote", mc.ID, "txinterval", *mc.SetTxInterval, "delivery", d)
	}
	if mc.SetAddress != nil && *mc.SetAddress != m.Address() {
		d := m.SaveAddressCommand(ctx, *mc.SetAddress)
		logger.Info("address change", "mote", mc.ID, "addr", *mc.SetAddress, "delivery", d)
	}
}
