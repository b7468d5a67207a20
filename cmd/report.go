package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberfield/nacalc/internal/circuit"
)

var reportCmd = &cobra.Command{
	Use:   "report <project.toml>",
	Short: "Print the per-device voltage report for a circuit definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, name, err := buildFromProject(args[0])
		if err != nil {
			return err
		}
		rep := eng.Report()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(name, rep)
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func printReport(name string, rep circuit.Report) {
	fmt.Printf("%s  (%.1f V supply, %s)\n\n", name, rep.Parameters.SystemVoltage, rep.Parameters.WireGauge)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AREA\tPOS\tDEVICE\tTYPE\tCURRENT (A)\tVOLTAGE (V)\tOK")
	for _, row := range rep.Rows {
		ok := "yes"
		if !row.OK {
			ok = "LOW"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.4f\t%.3f\t%s\n",
			row.Area, row.Position, row.Name, row.Type, row.Current, row.Voltage, ok)
	}
	w.Flush()

	s := rep.Stats
	fmt.Printf("\ndevices: %d (%d main, %d branch)\n", s.TotalDevices, s.MainDevices, s.BranchDevices)
	fmt.Printf("alarm load: %.4f A   standby load: %.4f A   wire: %.1f ft\n",
		s.TotalAlarmLoad, s.TotalStandbyLoad, s.TotalWireLength)
	fmt.Printf("worst case: %.3f V (drop %.3f V)", s.WorstVoltage, s.WorstDrop)
	if s.WorstDeviceID != "" {
		fmt.Printf(" at %s", s.WorstDeviceID)
	}
	fmt.Println()

	if !s.Validation.OK {
		fmt.Println()
		for _, v := range s.Validation.Violations {
			fmt.Printf("✗ %s: %s\n", v.Code, v.Message)
		}
	}
}
