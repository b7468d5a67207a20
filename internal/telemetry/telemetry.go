// Package telemetry provides a JSONL event stream recording circuit
// mutations and their electrical consequences. The engine itself pushes
// nothing; the host pulls each mutation's change summary and records it
// here, which keeps design sessions auditable and replayable without baking
// change events into the data model.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindDeviceAdded       = "device_added"
	KindDeviceRemoved     = "device_removed"
	KindBranchStarted     = "branch_started"
	KindParametersChanged = "parameters_changed"
	KindRecompute         = "recompute"
	KindValidation        = "validation"
	KindSnapshotSaved     = "snapshot_saved"
	KindSnapshotRestored  = "snapshot_restored"
	KindCircuitCleared    = "circuit_cleared"
)

// Event is a single telemetry record: a timestamp, a kind tag, the device a
// mutation touched (when there is one), and structured payload data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	DeviceID  string    `json:"device,omitempty"`
	Circuit   string    `json:"circuit,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for
// concurrent use. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates an Emitter appending JSONL events to the file at path,
// creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
