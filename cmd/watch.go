package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberfield/nacalc/internal/project"
	"github.com/emberfield/nacalc/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project.toml>",
	Short: "Re-validate a circuit definition on every save",
	Long: "Watch monitors the project file and re-runs the voltage calculation and\n" +
		"safety validation each time the file is written, so limit violations show\n" +
		"up while the circuit is being edited.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		revalidate(path)

		w, err := project.NewWatcher(path)
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		defer w.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", path)
		for {
			select {
			case _, ok := <-w.Changes:
				if !ok {
					return nil
				}
				revalidate(path)
			case <-sig:
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// revalidate rebuilds the engine from the file and reports the outcome.
// Parse and build failures are expected mid-edit and never stop the watch.
func revalidate(path string) {
	eng, name, err := buildFromProject(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		return
	}

	res := eng.Validate()
	emitTelemetry(telemetry.Event{
		Kind:    telemetry.KindValidation,
		Circuit: name,
		Data:    res,
	})

	stats := eng.Stats()
	if res.OK {
		fmt.Fprintf(os.Stderr, "✓ %s: %d devices, worst %.3f V\n",
			name, stats.TotalDevices, stats.WorstVoltage)
		return
	}
	for _, v := range res.Violations {
		fmt.Fprintf(os.Stderr, "✗ %s: %s\n", v.Code, v.Message)
	}
}
