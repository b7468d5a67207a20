package circuit

import (
	"errors"
	"testing"
)

func validParams() Parameters {
	return Parameters{
		SystemVoltage:    29.0,
		MinVoltage:       16.0,
		MaxLoad:          3.0,
		ReservedFraction: 0.2,
		WireGauge:        "16 AWG",
		ResistancePerKft: 4.016,
		SupplyDistance:   50,
		RoutingFactor:    1.0,
	}
}

func TestParametersValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Parameters)
		wantErr error
	}{
		{"valid", func(p *Parameters) {}, nil},
		{"zero system voltage", func(p *Parameters) { p.SystemVoltage = 0 }, ErrInvalidSystemVoltage},
		{"negative system voltage", func(p *Parameters) { p.SystemVoltage = -24 }, ErrInvalidSystemVoltage},
		{"zero min voltage", func(p *Parameters) { p.MinVoltage = 0 }, ErrInvalidMinVoltage},
		{"min above system", func(p *Parameters) { p.MinVoltage = 30 }, ErrInvalidMinVoltage},
		{"zero max load", func(p *Parameters) { p.MaxLoad = 0 }, ErrInvalidMaxLoad},
		{"reserved fraction of 1", func(p *Parameters) { p.ReservedFraction = 1 }, ErrInvalidReservedFraction},
		{"negative reserved fraction", func(p *Parameters) { p.ReservedFraction = -0.1 }, ErrInvalidReservedFraction},
		{"zero resistance", func(p *Parameters) { p.ResistancePerKft = 0 }, ErrInvalidResistance},
		{"negative supply distance", func(p *Parameters) { p.SupplyDistance = -1 }, ErrInvalidSupplyDistance},
		{"routing factor below 1", func(p *Parameters) { p.RoutingFactor = 0.9 }, ErrInvalidRoutingFactor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUsableLoadDerived(t *testing.T) {
	t.Parallel()
	p := validParams().withDerived()
	if want := 3.0 * 0.8; p.UsableLoad != want {
		t.Errorf("derived usable load = %v, want %v", p.UsableLoad, want)
	}

	// An explicit usable load is never overwritten.
	q := validParams()
	q.UsableLoad = 1.5
	if got := q.withDerived().UsableLoad; got != 1.5 {
		t.Errorf("explicit usable load = %v, want 1.5", got)
	}
}

func TestGaugeResistance(t *testing.T) {
	t.Parallel()
	r, ok := GaugeResistance("16 AWG")
	if !ok || r != 4.016 {
		t.Errorf("GaugeResistance(16 AWG) = %v, %v", r, ok)
	}
	if _, ok := GaugeResistance("7 AWG"); ok {
		t.Error("GaugeResistance(7 AWG) should not be known")
	}
	if len(Gauges()) == 0 {
		t.Error("Gauges() is empty")
	}
}
