// internal/mote/mote.go
package mote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tamzrod/swap-mote/internal/definition"
	"github.com/tamzrod/swap-mote/internal/register"
	"github.com/tamzrod/swap-mote/internal/swap"
)

// Server is the communication layer a mote transmits through.
// Confirmed calls block until the server resolves the exchange.
type Server interface {
	Send(p swap.Packet) error
	SetMoteRegister(ctx context.Context, m *Mote, id swap.RegID, v swap.Value) bool
	QueryMoteRegister(ctx context.Context, m *Mote, id swap.RegID) (swap.Value, bool)
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var (
	// ErrInvalidMote is returned by New for any construction failure.
	ErrInvalidMote = errors.New("invalid mote definition")

	ErrUnknownRegister = errors.New("mote: unknown register")
	ErrQueueEmpty      = errors.New("mote: command queue is empty")
)

// productCodeLen is two 8-digit hex fields: manufacturer id + product id.
const productCodeLen = 16

// Mote is the proxy of one remote SWAP node.
//
// mu guards the mutable fields below it. It is never held while the
// server is called, so the receive path may update state while a
// confirmed call is in flight.
type Mote struct {
	server       Server
	definition   *definition.Device
	clock        Clock
	log          *slog.Logger
	productCode  string
	manufacturer uint32
	product      uint32
	extendedAddr bool
	pwrDownMode  bool
	regular      []*register.Register
	config       []*register.Register

	mu         sync.Mutex
	address    uint16
	security   uint8
	nonce      uint8
	state      swap.State
	txInterval uint16
	queue      []Command
	lastUpdate time.Time

	// address sent by a flushed DEVICE_ADDR command, awaiting the mote's status
	pendingAddr *uint16
}

// Option customizes a Mote at construction.
type Option func(*Mote)

// WithAddress sets the initial address (default 0xFF).
func WithAddress(addr uint16) Option { return func(m *Mote) { m.address = addr } }

// WithSecurity sets the initial security option.
func WithSecurity(secu uint8) Option { return func(m *Mote) { m.security = secu } }

// WithNonce sets the initial security nonce.
func WithNonce(nonce uint8) Option { return func(m *Mote) { m.nonce = nonce } }

// WithExtendedAddr selects the 2-byte address layout for outbound packets.
func WithExtendedAddr(on bool) Option { return func(m *Mote) { m.extendedAddr = on } }

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(m *Mote) { m.clock = c } }

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option { return func(m *Mote) { m.log = l } }

// New builds a mote for productCode, loading its definition from defs.
// Any failure is reported as ErrInvalidMote and no mote is returned.
func New(server Server, productCode string, defs definition.Source, opts ...Option) (*Mote, error) {
	if server == nil {
		return nil, fmt.Errorf("%w: server required", ErrInvalidMote)
	}

	manufacturer, product, err := parseProductCode(productCode)
	if err != nil {
		return nil, fmt.Errorf("%w: product code %q: %w", ErrInvalidMote, productCode, err)
	}

	if defs == nil {
		return nil, fmt.Errorf("%w: definition source required", ErrInvalidMote)
	}
	def, err := defs.Lookup(productCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMote, err)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: empty definition for %s", ErrInvalidMote, productCode)
	}

	m := &Mote{
		server:       server,
		definition:   def,
		clock:        systemClock{},
		productCode:  productCode,
		manufacturer: manufacturer,
		product:      product,
		pwrDownMode:  def.PowerDownMode,
		regular:      def.RegList(false),
		config:       def.RegList(true),
		address:      swap.DefaultMoteAddr,
		state:        swap.StateRxOff,
		txInterval:   def.TxInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With("pcode", productCode)
	m.lastUpdate = m.clock.Now()

	return m, nil
}

func parseProductCode(code string) (uint32, uint32, error) {
	if len(code) != productCodeLen {
		return 0, 0, fmt.Errorf("want %d hex digits, got %d", productCodeLen, len(code))
	}
	manufacturer, err := strconv.ParseUint(code[:8], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	product, err := strconv.ParseUint(code[8:], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(manufacturer), uint32(product), nil
}

// ---- identity ----

// ProductCode is the 16-hex-digit product code the mote was built for.
func (m *Mote) ProductCode() string { return m.productCode }

// ManufacturerID is the first half of the product code.
func (m *Mote) ManufacturerID() uint32 { return m.manufacturer }

// ProductID is the second half of the product code.
func (m *Mote) ProductID() uint32 { return m.product }

// ExtendedAddr reports whether packets use 2-byte addresses.
func (m *Mote) ExtendedAddr() bool { return m.extendedAddr }

// PowerDownMode reports whether the mote sleeps between transmissions.
func (m *Mote) PowerDownMode() bool { return m.pwrDownMode }

// Definition is the device definition loaded at construction.
func (m *Mote) Definition() *definition.Device { return m.definition }

// ---- mirrored device state ----

// Address is the last confirmed device address.
func (m *Mote) Address() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// Security is the last confirmed security option.
func (m *Mote) Security() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.security
}

// Nonce is the security nonce used for outbound commands.
func (m *Mote) Nonce() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nonce
}

// SetNonce records the nonce last reported by the mote.
func (m *Mote) SetNonce(n uint8) {
	m.mu.Lock()
	m.nonce = n
	m.mu.Unlock()
}

// State is the last reported system state.
func (m *Mote) State() swap.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TxInterval is the last confirmed periodic transmission interval, in seconds.
func (m *Mote) TxInterval() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txInterval
}

// LastUpdate is the time of the most recent state observation.
func (m *Mote) LastUpdate() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdate
}

// UpdateTimestamp marks the mote as seen now.
func (m *Mote) UpdateTimestamp() {
	now := m.clock.Now()
	m.mu.Lock()
	m.lastUpdate = now
	m.mu.Unlock()
}

// ---- registers ----

// Register returns the register with the given id, regular list first.
func (m *Mote) Register(id swap.RegID) (*register.Register, bool) {
	return register.Find(id, m.regular, m.config)
}

// Parameter returns the first parameter with the given name, regular list first.
func (m *Mote) Parameter(name string) (*register.Parameter, bool) {
	return register.FindParameter(name, m.regular, m.config)
}

// RegularRegisters returns the regular register list in definition order.
func (m *Mote) RegularRegisters() []*register.Register { return m.regular }

// ConfigRegisters returns the configuration register list in definition order.
func (m *Mote) ConfigRegisters() []*register.Register { return m.config }

// SetRegisterValue stores a value reported by the mote.
// It returns false when the register is unknown.
func (m *Mote) SetRegisterValue(id swap.RegID, v swap.Value) bool {
	r, ok := m.Register(id)
	if !ok {
		return false
	}
	m.mu.Lock()
	r.Value = v
	m.mu.Unlock()
	return true
}

// registerValue reads a register value under the lock.
func (m *Mote) registerValue(id swap.RegID) (swap.Value, bool) {
	r, ok := m.Register(id)
	if !ok {
		return swap.Value{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return r.Value, true
}
