package circuit

import "errors"

// Sentinel errors for circuit construction and restore.
var (
	// ErrInvalidSystemVoltage indicates the supply voltage is zero or negative.
	ErrInvalidSystemVoltage = errors.New("system voltage must be positive")
	// ErrInvalidMinVoltage indicates the minimum voltage is not in (0, system voltage).
	ErrInvalidMinVoltage = errors.New("minimum voltage must be positive and below system voltage")
	// ErrInvalidMaxLoad indicates the rated maximum load is zero or negative.
	ErrInvalidMaxLoad = errors.New("maximum load must be positive")
	// ErrInvalidReservedFraction indicates the safety reserve is outside [0, 1).
	ErrInvalidReservedFraction = errors.New("reserved fraction must be in [0, 1)")
	// ErrInvalidResistance indicates the wire resistance is zero or negative.
	ErrInvalidResistance = errors.New("wire resistance must be positive")
	// ErrInvalidSupplyDistance indicates the supply-to-first-device distance is negative.
	ErrInvalidSupplyDistance = errors.New("supply distance must not be negative")
	// ErrInvalidRoutingFactor indicates the routing-overhead multiplier is below 1.
	ErrInvalidRoutingFactor = errors.New("routing factor must be at least 1")
	// ErrUnknownGauge indicates a wire gauge label with no resistance table entry.
	ErrUnknownGauge = errors.New("unknown wire gauge")
	// ErrInvalidSnapshot indicates a snapshot document that cannot describe a
	// well-formed circuit (duplicate or missing device ids, device nodes
	// without electrical data).
	ErrInvalidSnapshot = errors.New("invalid snapshot document")
)
