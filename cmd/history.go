package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberfield/nacalc/internal/circuit"
	"github.com/emberfield/nacalc/internal/config"
	"github.com/emberfield/nacalc/internal/history"
	"github.com/emberfield/nacalc/internal/telemetry"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage named circuit snapshots",
}

var historySaveCmd = &cobra.Command{
	Use:   "save <project.toml> <name>",
	Short: "Compute a circuit and store the result as a named snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, circuitName, err := buildFromProject(args[0])
		if err != nil {
			return err
		}

		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		name := args[1]
		if err := store.Save(cmd.Context(), name, eng.Snapshot()); err != nil {
			return err
		}
		emitTelemetry(telemetry.Event{
			Kind:    telemetry.KindSnapshotSaved,
			Circuit: circuitName,
			Data:    map[string]string{"name": name},
		})
		fmt.Fprintf(os.Stderr, "saved snapshot %q\n", name)
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "no snapshots stored")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSAVED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Name, e.SavedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:     "show <name>",
	Aliases: []string{"load"},
	Short:   "Print the voltage report of a stored snapshot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		eng, err := circuit.NewEngine(doc.Parameters)
		if err != nil {
			return err
		}
		if _, err := eng.Restore(doc); err != nil {
			return err
		}
		emitTelemetry(telemetry.Event{
			Kind: telemetry.KindSnapshotRestored,
			Data: map[string]string{"name": args[0]},
		})
		printReport(args[0], eng.Report())
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "deleted snapshot %q\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "snapshot database path (default from config)")
	historyCmd.AddCommand(historySaveCmd, historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = config.Load().HistoryPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return history.Open(cmd.Context(), path)
}
