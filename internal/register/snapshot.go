// internal/register/snapshot.go
package register

// Snapshot is the presentation form of one register.
type Snapshot struct {
	ID        uint8           `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Value     string          `json:"value" yaml:"value"`
	Endpoints []ParamSnapshot `json:"endpoints" yaml:"endpoints"`
}

// ParamSnapshot is the presentation form of one parameter.
type ParamSnapshot struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Direction string `json:"direction" yaml:"direction"`
	Value     any    `json:"value" yaml:"value"`
	Units     []Unit `json:"units,omitempty" yaml:"units,omitempty"`
}

// Dumps returns the register snapshot. Units are listed only when includeUnits is set.
func (r *Register) Dumps(includeUnits bool) Snapshot {
	s := Snapshot{
		ID:        uint8(r.ID),
		Name:      r.Name,
		Value:     r.Value.String(),
		Endpoints: make([]ParamSnapshot, 0, len(r.Params)),
	}
	for _, p := range r.Params {
		s.Endpoints = append(s.Endpoints, p.dumps(includeUnits))
	}
	return s
}

func (p *Parameter) dumps(includeUnits bool) ParamSnapshot {
	ps := ParamSnapshot{
		Name:      p.Name,
		Type:      string(p.Type),
		Direction: string(p.Direction),
	}

	switch p.Type {
	case TypeString:
		ps.Value = p.Text()
	case TypeBinary:
		ps.Value = p.Raw() != 0
	default:
		ps.Value = p.Scaled()
	}

	if includeUnits && len(p.Units) > 0 {
		ps.Units = append([]Unit(nil), p.Units...)
	}
	return ps
}
