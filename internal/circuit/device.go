package circuit

import "github.com/emberfield/nacalc/internal/geom"

// DeviceData holds the immutable per-device facts supplied by the caller:
// electrical draw, identification strings, and the physical connection point
// used only for wire-length computation. The engine never discovers devices
// itself; every device arrives through this struct.
type DeviceData struct {
	Name         string  `json:"name" toml:"name"`
	Type         string  `json:"type" toml:"type"`
	Manufacturer string  `json:"manufacturer,omitempty" toml:"manufacturer,omitempty"`
	Model        string  `json:"model,omitempty" toml:"model,omitempty"`
	AlarmCurrent float64 `json:"alarm_current" toml:"alarm_current"`
	// StandbyCurrent is the supervisory draw when the circuit is not in alarm.
	StandbyCurrent float64 `json:"standby_current" toml:"standby_current"`
	// Location is the device connection point, or nil when the position is
	// unknown. A missing location makes segment lengths fall back to the
	// documented default rather than failing.
	Location *geom.Point `json:"location,omitempty" toml:"location,omitempty"`
}
