package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/emberfield/nacalc/internal/config"
	"github.com/emberfield/nacalc/internal/project"
	"github.com/emberfield/nacalc/internal/telemetry"
)

// loadProject reads a circuit definition and fills gaps from the tool
// configuration: a missing wire gauge and routing factor fall back to the
// configured defaults. Electrical limits are never defaulted; the engine
// rejects a definition that omits them.
func loadProject(path string) (*project.File, error) {
	f, err := project.Load(path)
	if err != nil {
		return nil, err
	}

	cfg := config.Load()
	if f.Circuit.WireGauge == "" {
		f.Circuit.WireGauge = cfg.DefaultGauge
	}
	if f.Circuit.RoutingFactor == 0 {
		f.Circuit.RoutingFactor = cfg.DefaultRoutingFactor
	}
	return f, nil
}

var (
	emitterOnce sync.Once
	emitter     *telemetry.Emitter
)

// emitTelemetry records an event to the configured JSONL log. With no
// telemetry path configured the emitter stays nil and every emit is a no-op.
func emitTelemetry(evt telemetry.Event) {
	emitterOnce.Do(func() {
		path := config.Load().TelemetryPath
		if path == "" {
			return
		}
		var err error
		emitter, err = telemetry.NewEmitter(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		}
	})
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if err := emitter.Emit(evt); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
	}
}
