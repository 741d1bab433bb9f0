// internal/register/register.go
package register

import (
	"github.com/tamzrod/swap-mote/internal/swap"
)

// Kind tags the two register variants a mote exposes.
type Kind uint8

const (
	KindRegular Kind = iota
	KindConfig
)

func (k Kind) String() string {
	if k == KindConfig {
		return "config"
	}
	return "regular"
}

// Register is one addressable unit on a mote.
type Register struct {
	ID     swap.RegID
	Name   string
	Kind   Kind
	Value  swap.Value
	Params []*Parameter
}

// New builds a register and binds each parameter to it.
func New(id swap.RegID, name string, kind Kind, value swap.Value, params ...*Parameter) *Register {
	r := &Register{
		ID:     id,
		Name:   name,
		Kind:   kind,
		Value:  value,
		Params: params,
	}
	for _, p := range params {
		p.reg = r
	}
	return r
}

// Parameter looks up a parameter of this register by name.
func (r *Register) Parameter(name string) (*Parameter, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Find returns the first register with the given id.
// Lists are searched in the order given.
func Find(id swap.RegID, lists ...[]*Register) (*Register, bool) {
	for _, list := range lists {
		for _, r := range list {
			if r.ID == id {
				return r, true
			}
		}
	}
	return nil, false
}

// FindParameter returns the first parameter with the given name.
// Lists are searched in the order given, then each register's parameters in order.
func FindParameter(name string, lists ...[]*Register) (*Parameter, bool) {
	for _, list := range lists {
		for _, r := range list {
			if p, ok := r.Parameter(name); ok {
				return p, true
			}
		}
	}
	return nil, false
}
