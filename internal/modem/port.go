// internal/modem/port.go
package modem

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

const defaultBaudRate = 38400

// PortConfig is the serial line setup of the modem.
type PortConfig struct {
	Name     string
	BaudRate int
}

// Open opens the serial port and starts a server on it.
func Open(pc PortConfig, cfg Config) (*Server, error) {
	if pc.Name == "" {
		return nil, errors.New("modem: port name required")
	}
	if pc.BaudRate <= 0 {
		pc.BaudRate = defaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: pc.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(pc.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", pc.Name, err)
	}

	s, err := New(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}
