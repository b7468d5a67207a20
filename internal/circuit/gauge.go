package circuit

// gaugeResistance maps a copper wire gauge label to its single-conductor
// resistance in ohms per 1000 ft at 25°C. Values follow the standard AWG
// table for solid copper.
var gaugeResistance = map[string]float64{
	"12 AWG": 1.588,
	"14 AWG": 2.525,
	"16 AWG": 4.016,
	"18 AWG": 6.385,
}

// GaugeResistance returns the per-1000ft resistance for a known wire gauge
// label. The second return value reports whether the gauge is in the table.
func GaugeResistance(gauge string) (float64, bool) {
	r, ok := gaugeResistance[gauge]
	return r, ok
}

// Gauges returns the wire gauge labels with a resistance table entry.
func Gauges() []string {
	return []string{"12 AWG", "14 AWG", "16 AWG", "18 AWG"}
}
