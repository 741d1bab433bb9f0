// internal/modem/server.go
package modem

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/swap-mote/internal/mote"
	"github.com/tamzrod/swap-mote/internal/swap"
)

const (
	defaultAckTimeout = 2 * time.Second
	defaultRetries    = 3
)

var ErrClosed = errors.New("modem: closed")

// Config is the runtime config of the modem link.
type Config struct {
	Address      uint16 // gateway address used as packet source
	ExtendedAddr bool
	AckTimeout   time.Duration
	Retries      int // extra attempts after the first one
	Logger       *slog.Logger
}

// Server talks SWAP through a serial modem and implements mote.Server.
//
// Line format:
//
//	outbound: HEX\r
//	inbound:  (RRLL)HEX\r\n   RR = RSSI, LL = LQI
type Server struct {
	cfg  Config
	port io.ReadWriteCloser
	log  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	motes   []*mote.Mote
	waiters map[*waiter]struct{}

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type waiter struct {
	match func(swap.Packet) bool
	ch    chan swap.Packet
}

// New starts a server on an already opened port.
func New(port io.ReadWriteCloser, cfg Config) (*Server, error) {
	if port == nil {
		return nil, errors.New("modem: port required")
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		port:    port,
		log:     cfg.Logger.With("component", "modem"),
		waiters: make(map[*waiter]struct{}),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.readLoop()
	return s, nil
}

// Close stops the receive loop and closes the port.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.port.Close()
		s.wg.Wait()
	})
	return err
}

// Register makes the receive path route status packets to m.
func (s *Server) Register(m *mote.Mote) {
	s.mu.Lock()
	s.motes = append(s.motes, m)
	s.mu.Unlock()
}

// Motes returns the registered motes.
func (s *Server) Motes() []*mote.Mote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mote.Mote(nil), s.motes...)
}

// moteByAddr matches on the current address, so confirmed address changes need no re-keying.
func (s *Server) moteByAddr(addr uint16) *mote.Mote {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.motes {
		if m.Address() == addr {
			return m
		}
	}
	return nil
}

// moteByPendingAddr finds the mote whose queued address change to addr was flushed.
func (s *Server) moteByPendingAddr(addr uint16) *mote.Mote {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.motes {
		if m.ConfirmAddress(addr) {
			return m
		}
	}
	return nil
}

// ------------------------------------------------------------
// OUTBOUND
// ------------------------------------------------------------

// Send writes one packet. Non-status packets carry the gateway address as source.
func (s *Server) Send(p swap.Packet) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	if p.Function != swap.FuncStatus {
		p.Source = s.cfg.Address
	}
	if err := p.Check(); err != nil {
		return fmt.Errorf("modem: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := io.WriteString(s.port, p.Hex()+"\r"); err != nil {
		return fmt.Errorf("modem: write: %w", err)
	}
	s.log.Debug("packet sent", "packet", p.String())
	return nil
}

// SetMoteRegister sends a command and waits for the matching status.
// A DEVICE_ADDR change is also acknowledged from the new address.
func (s *Server) SetMoteRegister(ctx context.Context, m *mote.Mote, id swap.RegID, v swap.Value) bool {
	addr := m.Address()
	match := func(p swap.Packet) bool {
		if p.Function != swap.FuncStatus || p.RegID != id || !p.Value.Equal(v) {
			return false
		}
		if p.RegAddr == addr {
			return true
		}
		return id == swap.RegDeviceAddr && p.RegAddr == uint16(v.Uint())
	}
	build := func() swap.Packet {
		return swap.NewCommandPacket(addr, id, v, m.Nonce(), m.ExtendedAddr())
	}

	_, ok := s.exchange(ctx, build, match, "addr", addr, "reg", id, "value", v.String())
	return ok
}

// QueryMoteRegister sends a query and waits for the status carrying the value.
func (s *Server) QueryMoteRegister(ctx context.Context, m *mote.Mote, id swap.RegID) (swap.Value, bool) {
	addr := m.Address()
	match := func(p swap.Packet) bool {
		return p.Function == swap.FuncStatus && p.RegID == id && p.RegAddr == addr
	}
	build := func() swap.Packet {
		return swap.NewQueryPacket(addr, id, m.ExtendedAddr())
	}

	p, ok := s.exchange(ctx, build, match, "addr", addr, "reg", id)
	if !ok {
		return swap.Value{}, false
	}
	return p.Value, true
}

// exchange sends build() up to 1+Retries times, waiting AckTimeout for match each time.
func (s *Server) exchange(ctx context.Context, build func() swap.Packet, match func(swap.Packet) bool, attrs ...any) (swap.Packet, bool) {
	log := s.log.With("xid", uuid.NewString()).With(attrs...)

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		w := s.addWaiter(match)

		if err := s.Send(build()); err != nil {
			s.removeWaiter(w)
			log.Warn("exchange send failed", "attempt", attempt, "err", err)
			return swap.Packet{}, false
		}

		timer := time.NewTimer(s.cfg.AckTimeout)
		select {
		case p := <-w.ch:
			timer.Stop()
			s.removeWaiter(w)
			log.Debug("exchange acknowledged", "attempt", attempt)
			return p, true

		case <-timer.C:
			s.removeWaiter(w)
			log.Debug("exchange timed out", "attempt", attempt)

		case <-ctx.Done():
			timer.Stop()
			s.removeWaiter(w)
			log.Debug("exchange cancelled", "err", ctx.Err())
			return swap.Packet{}, false

		case <-s.done:
			timer.Stop()
			s.removeWaiter(w)
			return swap.Packet{}, false
		}
	}

	log.Warn("exchange not acknowledged", "attempts", s.cfg.Retries+1)
	return swap.Packet{}, false
}

func (s *Server) addWaiter(match func(swap.Packet) bool) *waiter {
	w := &waiter{match: match, ch: make(chan swap.Packet, 1)}
	s.mu.Lock()
	s.waiters[w] = struct{}{}
	s.mu.Unlock()
	return w
}

func (s *Server) removeWaiter(w *waiter) {
	s.mu.Lock()
	delete(s.waiters, w)
	s.mu.Unlock()
}

// ------------------------------------------------------------
// INBOUND
// ------------------------------------------------------------

func (s *Server) readLoop() {
	defer s.wg.Done()

	sc := bufio.NewScanner(s.port)
	sc.Split(scanModemLines)

	for sc.Scan() {
		s.handleLine(sc.Text())
	}

	select {
	case <-s.done:
	default:
		if err := sc.Err(); err != nil {
			s.log.Error("modem read failed", "err", err)
		}
	}
}

func (s *Server) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	// strip "(RRLL)" link quality prefix
	if strings.HasPrefix(line, "(") {
		end := strings.IndexByte(line, ')')
		if end < 0 {
			s.log.Warn("malformed modem line", "line", line)
			return
		}
		line = line[end+1:]
	}

	p, err := swap.DecodeHex(line, s.cfg.ExtendedAddr)
	if err != nil {
		s.log.Warn("undecodable packet", "line", line, "err", err)
		return
	}
	s.log.Debug("packet received", "packet", p.String())

	if p.Function != swap.FuncStatus {
		return
	}

	// mirror first so a released waiter already sees the reported value
	s.applyStatus(p)
	s.notifyWaiters(p)
}

func (s *Server) notifyWaiters(p swap.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.waiters {
		if w.match(p) {
			select {
			case w.ch <- p:
			default:
			}
		}
	}
}

// applyStatus mirrors a status packet into the mote that sent it.
func (s *Server) applyStatus(p swap.Packet) {
	m := s.moteByAddr(p.RegAddr)
	if m == nil && p.RegID == swap.RegDeviceAddr && uint16(p.Value.Uint()) == p.RegAddr {
		m = s.moteByPendingAddr(p.RegAddr)
	}
	if m == nil {
		s.log.Debug("status from unknown mote", "addr", p.RegAddr, "reg", p.RegID)
		return
	}

	m.SetRegisterValue(p.RegID, p.Value)

	switch p.RegID {
	case swap.RegSystemState:
		m.UpdateState(swap.State(p.Value.Uint()))
	case swap.RegSecuNonce:
		m.SetNonce(uint8(p.Value.Uint()))
		m.UpdateTimestamp()
	default:
		m.UpdateTimestamp()
	}
}

// scanModemLines splits on CR or LF and drops empty lines.
func scanModemLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
		start++
	}
	if i := bytes.IndexAny(data[start:], "\r\n"); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}
	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
