// cmd/swapmote/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tamzrod/swap-mote/internal/config"
	"github.com/tamzrod/swap-mote/internal/definition"
	"github.com/tamzrod/swap-mote/internal/modem"
	"github.com/tamzrod/swap-mote/internal/mote"
	"github.com/tamzrod/swap-mote/internal/poller"
	"github.com/tamzrod/swap-mote/internal/status"
	"github.com/tamzrod/swap-mote/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: swapmote <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	g := cfg.Gateway

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Modem + motes
	// --------------------

	srv, err := modem.Open(
		modem.PortConfig{Name: g.Modem.Port, BaudRate: g.Modem.BaudRate},
		modem.Config{
			Address:      g.Modem.Address,
			ExtendedAddr: g.Modem.ExtendedAddr,
			AckTimeout:   time.Duration(g.Modem.AckTimeoutMs) * time.Millisecond,
			Retries:      *g.Modem.Retries,
			Logger:       logger,
		},
	)
	if err != nil {
		log.Fatalf("modem open failed: %v", err)
	}
	defer srv.Close()

	defs := definition.NewDirSource(g.Definitions)

	motes := make(map[string]*mote.Mote, len(g.Motes))
	for _, mc := range g.Motes {
		m, err := mote.New(srv, mc.ProductCode, defs,
			mote.WithAddress(mc.Address),
			mote.WithSecurity(mc.Security),
			mote.WithNonce(mc.Nonce),
			mote.WithExtendedAddr(g.Modem.ExtendedAddr),
			mote.WithLogger(logger.With("mote", mc.ID)),
		)
		if err != nil {
			log.Fatalf("mote build failed (mote=%s): %v", mc.ID, err)
		}
		srv.Register(m)
		motes[mc.ID] = m
	}

	// --------------------
	// Status mirror (optional per mote)
	// --------------------

	plans := writer.BuildStatusPlans(g)

	clients, closeWriters, err := writer.BuildEndpointClients(
		plans,
		time.Duration(g.StatusMemory.TimeoutMs)*time.Millisecond,
	)
	if err != nil {
		log.Fatalf("status memory connect failed: %v", err)
	}
	defer closeWriters()

	statusWriters, err := writer.BuildStatusWriters(plans, clients)
	if err != nil {
		log.Fatalf("status writer build failed: %v", err)
	}

	// --------------------
	// Per-mote pipelines
	// --------------------

	var wg sync.WaitGroup

	for _, mc := range g.Motes {
		p, err := poller.Build(g, mc, motes[mc.ID])
		if err != nil {
			log.Fatalf("poller build failed (mote=%s): %v", mc.ID, err)
		}

		out := make(chan poller.PollResult)
		sw := statusWriters[mc.ID]

		// Orchestrator (runner-owned health memory)
		wg.Add(1)
		go func(moteID string) {
			defer wg.Done()
			lastHealth := status.HealthUnknown

			for {
				select {
				case <-ctx.Done():
					return

				case res := <-out:
					if res.Block.Health != lastHealth {
						logger.Info("mote health changed",
							"mote", moteID,
							"from", lastHealth,
							"to", res.Block.Health,
						)
						lastHealth = res.Block.Health
					}

					if sw == nil {
						continue
					}
					if err := sw.WriteStatus(res.Block); err != nil {
						logger.Warn("status write failed", "mote", moteID, "err", err)
					}
				}
			}
		}(mc.ID)

		// poller producer
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()
	}

	// --------------------
	// Pending changes from config
	// --------------------

	// awake motes are confirmed right away, so each runs on its own goroutine
	for _, mc := range g.Motes {
		if mc.SetTxInterval == nil && mc.SetAddress == nil {
			continue
		}
		wg.Add(1)
		go func(m *mote.Mote, mc config.MoteConfig) {
			defer wg.Done()
			applyPending(ctx, m, mc, logger)
		}(motes[mc.ID], mc)
	}

	logger.Info("gateway running", "motes", len(motes), "status_blocks", len(statusWriters))

	<-ctx.Done()
	wg.Wait()

	// --------------------
	// Shutdown snapshot
	// --------------------

	if g.SnapshotFile != "" {
		if err := status.DumpFile(g.SnapshotFile, srv.Motes(), true); err != nil {
			logger.Error("snapshot dump failed", "path", g.SnapshotFile, "err", err)
		} else {
			logger.Info("snapshot written", "path", g.SnapshotFile)
		}
	}
}
