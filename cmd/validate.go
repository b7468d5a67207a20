package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberfield/nacalc/internal/circuit"
	"github.com/emberfield/nacalc/internal/telemetry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project.toml>",
	Short: "Check a circuit definition against its safety limits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, name, err := buildFromProject(args[0])
		if err != nil {
			return err
		}

		res := eng.Validate()
		emitTelemetry(telemetry.Event{
			Kind:    telemetry.KindValidation,
			Circuit: name,
			Data:    res,
		})

		if res.OK {
			fmt.Fprintf(os.Stderr, "✓ %s: all safety limits satisfied\n", name)
			return nil
		}
		for _, v := range res.Violations {
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", v.Code, v.Message)
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// buildFromProject loads a circuit definition and replays it into a live
// engine, returning the engine and the circuit's display name. One telemetry
// event is recorded per replayed device plus a final recompute summary.
func buildFromProject(path string) (*circuit.Engine, string, error) {
	f, err := loadProject(path)
	if err != nil {
		return nil, "", err
	}
	eng, err := f.Build()
	if err != nil {
		return nil, "", err
	}
	name := f.Circuit.Name
	if name == "" {
		name = path
	}
	for _, d := range f.Devices {
		emitTelemetry(telemetry.Event{
			Kind:     telemetry.KindDeviceAdded,
			DeviceID: d.ID,
			Circuit:  name,
		})
	}
	emitTelemetry(telemetry.Event{
		Kind:    telemetry.KindRecompute,
		Circuit: name,
		Data:    eng.Stats(),
	})
	return eng, name, nil
}
