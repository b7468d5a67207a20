// Package project reads and writes circuit definition files: a TOML
// document carrying the electrical parameter contract plus the ordered
// device list, and builds a live engine from one through the engine's
// public mutation API only.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/emberfield/nacalc/internal/circuit"
	"github.com/emberfield/nacalc/internal/geom"
)

// File is the parsed circuit definition document.
type File struct {
	Circuit CircuitSection `toml:"circuit"`
	Devices []DeviceEntry  `toml:"device"`
}

// CircuitSection is the [circuit] table: a display name plus the engine's
// parameter contract. ResistancePerKft may be omitted when the wire gauge
// has a resistance table entry.
type CircuitSection struct {
	Name string `toml:"name"`
	circuit.Parameters
}

// DeviceEntry is one [[device]] entry, in circuit order. A main-chain
// device leaves BranchOf empty; a branch device names its tap point's id.
type DeviceEntry struct {
	ID             string  `toml:"id,omitempty"`
	Name           string  `toml:"name"`
	Type           string  `toml:"type"`
	Manufacturer   string  `toml:"manufacturer,omitempty"`
	Model          string  `toml:"model,omitempty"`
	AlarmCurrent   float64 `toml:"alarm_current"`
	StandbyCurrent float64 `toml:"standby_current"`
	// Location is the connection point as [x, y, z] in feet; empty means
	// unknown, which makes segment lengths fall back to the default.
	Location []float64 `toml:"location,omitempty"`
	BranchOf string    `toml:"branch_of,omitempty"`
}

// Load reads a circuit definition from the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}
	return &f, nil
}

// Save writes the circuit definition atomically (write temp + rename),
// creating parent directories as needed.
func Save(path string, f *File) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling project file: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp project file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming project file: %w", err)
	}
	return nil
}

// point converts a [x, y, z] location to a connection point, or nil when
// the entry carries no usable location.
func (d *DeviceEntry) point() *geom.Point {
	if len(d.Location) != 3 {
		return nil
	}
	return &geom.Point{X: d.Location[0], Y: d.Location[1], Z: d.Location[2]}
}

// data converts the entry to the engine's device contract.
func (d *DeviceEntry) data() *circuit.DeviceData {
	return &circuit.DeviceData{
		Name:           d.Name,
		Type:           d.Type,
		Manufacturer:   d.Manufacturer,
		Model:          d.Model,
		AlarmCurrent:   d.AlarmCurrent,
		StandbyCurrent: d.StandbyCurrent,
		Location:       d.point(),
	}
}
