package project

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/emberfield/nacalc/internal/circuit"
)

// Build constructs a live engine from the definition by replaying every
// device through the engine's public mutation API in file order. Entries
// without an id are assigned one in place, so saving the file afterwards
// keeps device identity stable across sessions. A definition the engine
// rejects — a duplicate id, or a branch entry naming an unknown tap —
// is an error here rather than a silent skip, since a project file is a
// contract, not interactive input.
func (f *File) Build() (*circuit.Engine, error) {
	params := f.Circuit.Parameters
	if params.ResistancePerKft == 0 {
		r, ok := circuit.GaugeResistance(params.WireGauge)
		if !ok {
			return nil, fmt.Errorf("project: %w: %q", circuit.ErrUnknownGauge, params.WireGauge)
		}
		params.ResistancePerKft = r
	}

	eng, err := circuit.NewEngine(params)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	for i := range f.Devices {
		entry := &f.Devices[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}

		var cs circuit.ChangeSet
		if entry.BranchOf == "" {
			cs = eng.AddDeviceToMain(entry.ID, entry.data())
		} else {
			cs = eng.AddDeviceToBranch(entry.ID, entry.data(), entry.BranchOf)
		}
		if len(cs.Nodes) == 0 {
			return nil, fmt.Errorf("project: device %q (entry %d) rejected by the engine", entry.ID, i+1)
		}
	}
	return eng, nil
}
