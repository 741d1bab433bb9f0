// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/swap-mote/internal/config"
	wmodbus "github.com/tamzrod/swap-mote/internal/writer/modbus"
)

// BuildStatusPlans returns one plan per mote that opted into the status mirror.
// Assumes config has already passed Validate and Normalize.
func BuildStatusPlans(g cfg.GatewayConfig) []StatusPlan {
	var plans []StatusPlan
	for _, m := range g.Motes {
		if m.StatusSlot == nil {
			continue
		}
		plans = append(plans, StatusPlan{
			MoteID:   m.ID,
			Endpoint: g.StatusMemory.Endpoint,
			UnitID:   g.StatusMemory.UnitID,
			BaseSlot: *m.StatusSlot,
		})
	}
	return plans
}

// BuildEndpointClients creates one TCP client per unique endpoint in plans.
func BuildEndpointClients(plans []StatusPlan, timeout time.Duration) (map[string]endpointClient, func() error, error) {
	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, p := range plans {
		if _, ok := clients[p.Endpoint]; ok {
			continue
		}
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: p.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[p.Endpoint] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}

// BuildStatusWriters wires one writer per plan, keyed by mote id.
func BuildStatusWriters(plans []StatusPlan, clients map[string]endpointClient) (map[string]StatusWriter, error) {
	out := make(map[string]StatusWriter, len(plans))
	for _, p := range plans {
		sw, err := NewMoteStatusWriter(p, clients)
		if err != nil {
			return nil, err
		}
		out[p.MoteID] = sw
	}
	return out, nil
}
