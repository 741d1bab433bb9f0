// internal/definition/definition.go
package definition

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/tamzrod/swap-mote/internal/register"
	"github.com/tamzrod/swap-mote/internal/swap"
)

// Source resolves a product code into a device definition.
type Source interface {
	Lookup(productCode string) (*Device, error)
}

var ErrNotFound = errors.New("definition: product not found")

// Device is the capability definition of one product.
type Device struct {
	Manufacturer  string        `yaml:"manufacturer"`
	Product       string        `yaml:"product"`
	PowerDownMode bool          `yaml:"pwrdownmode"`
	TxInterval    uint16        `yaml:"txinterval"`
	Regular       []RegisterDef `yaml:"regular"`
	Config        []RegisterDef `yaml:"config"`
}

// RegisterDef describes one register.
type RegisterDef struct {
	ID     uint8      `yaml:"id"`
	Name   string     `yaml:"name"`
	Size   int        `yaml:"size"`    // bytes
	Value  string     `yaml:"default"` // hex, optional
	Params []ParamDef `yaml:"params"`
}

// ParamDef describes one parameter inside a register.
type ParamDef struct {
	Name      string          `yaml:"name"`
	Type      string          `yaml:"type"`
	Direction string          `yaml:"direction"`
	BytePos   int             `yaml:"byte_pos"`
	ByteSize  int             `yaml:"byte_size"`
	BitPos    int             `yaml:"bit_pos"`
	BitSize   int             `yaml:"bit_size"`
	Units     []register.Unit `yaml:"units"`
}

// RegList builds fresh register instances for the regular (config=false)
// or configuration (config=true) list. Order follows the definition.
func (d *Device) RegList(config bool) []*register.Register {
	defs, kind := d.Regular, register.KindRegular
	if config {
		defs, kind = d.Config, register.KindConfig
	}

	out := make([]*register.Register, 0, len(defs))
	for _, rd := range defs {
		params := make([]*register.Parameter, 0, len(rd.Params))
		for _, pd := range rd.Params {
			params = append(params, &register.Parameter{
				Name:      pd.Name,
				Type:      register.ParamType(pd.Type),
				Direction: register.Direction(pd.Direction),
				BytePos:   pd.BytePos,
				ByteSize:  pd.ByteSize,
				BitPos:    pd.BitPos,
				BitSize:   pd.BitSize,
				Units:     append([]register.Unit(nil), pd.Units...),
			})
		}
		out = append(out, register.New(swap.RegID(rd.ID), rd.Name, kind, rd.initialValue(), params...))
	}
	return out
}

// initialValue decodes the default; Validate has already checked it.
func (rd RegisterDef) initialValue() swap.Value {
	if rd.Value == "" {
		return swap.NewValue(0, rd.Size)
	}
	b, err := hex.DecodeString(rd.Value)
	if err != nil {
		return swap.NewValue(0, rd.Size)
	}
	v := make([]byte, rd.Size)
	copy(v[max(0, rd.Size-len(b)):], b[max(0, len(b)-rd.Size):])
	return swap.ValueFromBytes(v)
}

// Validate checks the definition.
// It performs declarative validation only.
// It MUST NOT mutate the definition.
func (d *Device) Validate() error {
	for _, list := range [][]RegisterDef{d.Regular, d.Config} {
		seen := make(map[uint8]struct{})
		for _, rd := range list {
			if _, dup := seen[rd.ID]; dup {
				return fmt.Errorf("definition: register %d declared twice", rd.ID)
			}
			seen[rd.ID] = struct{}{}

			if rd.Size <= 0 {
				return fmt.Errorf("definition: register %d: size must be > 0", rd.ID)
			}
			if rd.Value != "" {
				if _, err := hex.DecodeString(rd.Value); err != nil {
					return fmt.Errorf("definition: register %d: bad default %q: %w", rd.ID, rd.Value, err)
				}
			}

			for _, pd := range rd.Params {
				if err := pd.validate(rd); err != nil {
					return fmt.Errorf("definition: register %d param %q: %w", rd.ID, pd.Name, err)
				}
			}
		}
	}
	return nil
}

func (pd ParamDef) validate(rd RegisterDef) error {
	if pd.Name == "" {
		return errors.New("name required")
	}
	switch register.ParamType(pd.Type) {
	case register.TypeNumber, register.TypeBinary, register.TypeString:
	default:
		return fmt.Errorf("unknown type %q", pd.Type)
	}
	switch register.Direction(pd.Direction) {
	case "", register.DirInput, register.DirOutput:
	default:
		return fmt.Errorf("unknown direction %q", pd.Direction)
	}

	if pd.BitSize > 0 {
		if pd.ByteSize != 0 {
			return errors.New("bit fields must not set byte_size")
		}
		if pd.BitPos < 0 || pd.BitPos+pd.BitSize > 8 {
			return errors.New("bit field must stay inside one byte")
		}
		if pd.BytePos < 0 || pd.BytePos >= rd.Size {
			return errors.New("byte_pos outside register")
		}
		return nil
	}

	if pd.ByteSize <= 0 {
		return errors.New("byte_size must be > 0")
	}
	if pd.BytePos < 0 || pd.BytePos+pd.ByteSize > rd.Size {
		return errors.New("window outside register")
	}
	return nil
}
