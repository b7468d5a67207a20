package circuit

import "fmt"

// Parameters is the supply contract for a whole circuit: the electrical
// limits and wiring facts every calculation depends on. All fields are
// caller-supplied; the engine treats them as read-only.
type Parameters struct {
	// SystemVoltage is the nominal supply voltage at the panel, in volts.
	SystemVoltage float64 `json:"system_voltage" toml:"system_voltage" mapstructure:"system_voltage"`
	// MinVoltage is the lowest allowable voltage at any device, in volts.
	MinVoltage float64 `json:"min_voltage" toml:"min_voltage" mapstructure:"min_voltage"`
	// MaxLoad is the rated maximum circuit load, in amps.
	MaxLoad float64 `json:"max_load" toml:"max_load" mapstructure:"max_load"`
	// ReservedFraction is the safety margin held back from MaxLoad, in [0, 1).
	ReservedFraction float64 `json:"reserved_fraction" toml:"reserved_fraction" mapstructure:"reserved_fraction"`
	// UsableLoad is the real operating ceiling. Zero means "derive it" as
	// MaxLoad × (1 − ReservedFraction).
	UsableLoad float64 `json:"usable_load" toml:"usable_load,omitempty" mapstructure:"usable_load"`
	// WireGauge is the display label for the conductor gauge, e.g. "16 AWG".
	WireGauge string `json:"wire_gauge" toml:"wire_gauge" mapstructure:"wire_gauge"`
	// ResistancePerKft is the single-conductor resistance in ohms per 1000 ft.
	ResistancePerKft float64 `json:"resistance_per_kft" toml:"resistance_per_kft" mapstructure:"resistance_per_kft"`
	// SupplyDistance is the wire length from the panel to the first device, in feet.
	SupplyDistance float64 `json:"supply_distance" toml:"supply_distance" mapstructure:"supply_distance"`
	// RoutingFactor multiplies straight-line distances to account for
	// non-straight wire routing. Must be at least 1.
	RoutingFactor float64 `json:"routing_factor" toml:"routing_factor" mapstructure:"routing_factor"`
}

// Validate checks the parameter contract. Missing or out-of-range values are
// construction-time failures; the engine never silently defaults them.
func (p Parameters) Validate() error {
	if p.SystemVoltage <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSystemVoltage, p.SystemVoltage)
	}
	if p.MinVoltage <= 0 || p.MinVoltage >= p.SystemVoltage {
		return fmt.Errorf("%w: got %v (system %v)", ErrInvalidMinVoltage, p.MinVoltage, p.SystemVoltage)
	}
	if p.MaxLoad <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidMaxLoad, p.MaxLoad)
	}
	if p.ReservedFraction < 0 || p.ReservedFraction >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidReservedFraction, p.ReservedFraction)
	}
	if p.ResistancePerKft <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidResistance, p.ResistancePerKft)
	}
	if p.SupplyDistance < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidSupplyDistance, p.SupplyDistance)
	}
	if p.RoutingFactor < 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRoutingFactor, p.RoutingFactor)
	}
	return nil
}

// withDerived returns a copy with UsableLoad filled in when the caller left
// it zero.
func (p Parameters) withDerived() Parameters {
	if p.UsableLoad == 0 {
		p.UsableLoad = p.MaxLoad * (1 - p.ReservedFraction)
	}
	return p
}
