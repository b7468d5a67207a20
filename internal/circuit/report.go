package circuit

import "fmt"

// Violation codes produced by Validate.
const (
	ViolationOverload   = "overload"    // total load above rated maximum
	ViolationReserve    = "reserve"     // total load above usable (safety-margined) load
	ViolationLowVoltage = "low_voltage" // device voltage below minimum
	ViolationWireLength = "wire_length" // total wire length above the maximum for the load
)

// Violation is one safety-limit failure. Violations are data for the caller
// to act on, not errors.
type Violation struct {
	Code     string `json:"code"`
	DeviceID string `json:"device_id,omitempty"`
	Message  string `json:"message"`
}

// ValidationResult aggregates every violation plus the overall outcome.
type ValidationResult struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// Statistics is a derived snapshot of the circuit: counts, totals, the
// worst-case device, and the validation outcome. It is recomputed after
// every mutation and never authoritative.
type Statistics struct {
	TotalDevices  int `json:"total_devices"`
	MainDevices   int `json:"main_devices"`
	BranchDevices int `json:"branch_devices"`

	TotalAlarmLoad   float64 `json:"total_alarm_load"`
	TotalStandbyLoad float64 `json:"total_standby_load"`
	TotalWireLength  float64 `json:"total_wire_length"`

	// WorstVoltage is the lowest device voltage on the circuit; WorstDrop is
	// the total drop from the supply down to that device.
	WorstVoltage  float64 `json:"worst_voltage"`
	WorstDrop     float64 `json:"worst_drop"`
	WorstDeviceID string  `json:"worst_device_id,omitempty"`

	Validation ValidationResult `json:"validation"`
}

// ReportRow is one device line of the outbound report contract.
type ReportRow struct {
	Position int     `json:"position"`
	DeviceID string  `json:"device_id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Area     string  `json:"area"` // AreaMain or the branch label
	Current  float64 `json:"current"`
	Voltage  float64 `json:"voltage"`
	OK       bool    `json:"ok"`
}

// Report is the flat, ordered device list plus the circuit-level summary,
// consumed by external formatting collaborators.
type Report struct {
	Parameters Parameters  `json:"parameters"`
	Rows       []ReportRow `json:"rows"`
	Stats      Statistics  `json:"stats"`
}

// Validate aggregates every safety-limit violation: total load against the
// rated maximum and against the usable load, per-device voltage against the
// minimum at every main and branch device, and total wire length against
// the maximum allowed for the present load.
func (e *Engine) Validate() ValidationResult {
	var res ValidationResult

	total := e.tree.Root().AccumulatedLoad
	if total > e.params.MaxLoad {
		res.Violations = append(res.Violations, Violation{
			Code:    ViolationOverload,
			Message: fmt.Sprintf("total load %.4f A exceeds rated maximum %.4f A", total, e.params.MaxLoad),
		})
	}
	if total > e.params.UsableLoad {
		res.Violations = append(res.Violations, Violation{
			Code:    ViolationReserve,
			Message: fmt.Sprintf("total load %.4f A exceeds usable load %.4f A", total, e.params.UsableLoad),
		})
	}

	e.tree.Walk(func(n *Node) bool {
		if n.Kind != KindDevice {
			return true
		}
		if n.Voltage < e.params.MinVoltage {
			res.Violations = append(res.Violations, Violation{
				Code:     ViolationLowVoltage,
				DeviceID: n.DeviceID,
				Message:  fmt.Sprintf("voltage %.3f V at %s is below minimum %.3f V", n.Voltage, n.Name, e.params.MinVoltage),
			})
		}
		return true
	})

	wire := e.totalWireLength()
	if maxDist := e.MaxDistance(total); maxDist != UnlimitedDistance && wire > maxDist {
		res.Violations = append(res.Violations, Violation{
			Code:    ViolationWireLength,
			Message: fmt.Sprintf("total wire length %.1f ft exceeds maximum %.1f ft for the present load", wire, maxDist),
		})
	}

	res.OK = len(res.Violations) == 0
	return res
}

// Stats returns freshly recomputed circuit statistics.
func (e *Engine) Stats() Statistics {
	e.refreshStats()
	return e.stats
}

// refreshStats recomputes the derived snapshot from the tree and indexes.
func (e *Engine) refreshStats() {
	var s Statistics
	s.MainDevices = len(e.mainOrder)
	for _, list := range e.branches {
		s.BranchDevices += len(list)
	}
	s.TotalDevices = s.MainDevices + s.BranchDevices
	s.TotalWireLength = e.totalWireLength()

	s.WorstVoltage = e.params.SystemVoltage
	e.tree.Walk(func(n *Node) bool {
		if n.Kind != KindDevice {
			return true
		}
		s.TotalAlarmLoad += n.Data.AlarmCurrent
		s.TotalStandbyLoad += n.Data.StandbyCurrent
		if n.Voltage < s.WorstVoltage {
			s.WorstVoltage = n.Voltage
			s.WorstDeviceID = n.DeviceID
		}
		return true
	})
	s.WorstDrop = e.params.SystemVoltage - s.WorstVoltage
	s.Validation = e.Validate()
	e.stats = s
}

// totalWireLength sums the incoming-segment lengths of every device node.
func (e *Engine) totalWireLength() float64 {
	var total float64
	e.tree.Walk(func(n *Node) bool {
		if n.Kind == KindDevice {
			total += n.DistanceFromParent
		}
		return true
	})
	return total
}

// Report assembles the outbound report: main-chain rows in supply order,
// then each tap's branch rows in main-chain order, plus the summary.
func (e *Engine) Report() Report {
	e.refreshStats()
	rep := Report{Parameters: e.params, Stats: e.stats}

	for i, id := range e.mainOrder {
		rep.Rows = append(rep.Rows, e.reportRow(id, AreaMain, i+1))
	}
	for _, tap := range e.mainOrder {
		label := e.branchLabels[tap]
		for j, bid := range e.branches[tap] {
			rep.Rows = append(rep.Rows, e.reportRow(bid, label, j+1))
		}
	}
	return rep
}

func (e *Engine) reportRow(id, area string, position int) ReportRow {
	node := e.tree.Node(e.nodeByDevice[id])
	data := e.devices[id]
	return ReportRow{
		Position: position,
		DeviceID: id,
		Name:     data.Name,
		Type:     data.Type,
		Area:     area,
		Current:  data.AlarmCurrent,
		Voltage:  node.Voltage,
		OK:       node.Voltage >= e.params.MinVoltage,
	}
}
