package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/service"
	"github.com/Aashish23092/ghost-shift-audit/store"
)

var (
	reconcileRoster string
	reconcileShifts string
	reconcileLog    string
	reconcileOut    string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a roster against a transcribed paper log",
	Long: `Reconcile reads the digital roster and the transcribed sign-in sheet
from YAML or JSON files and prints one report per worker and per
unmatched paper line as JSON.`,
	Example: `  ghost-audit reconcile --roster data/roster.yaml --log paper.yaml
  ghost-audit reconcile --shifts shifts.json --log paper.json --out reports.json`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileRoster, "roster", "", "roster file (same format as the roster seed)")
	reconcileCmd.Flags().StringVar(&reconcileShifts, "shifts", "", "digital shift file")
	reconcileCmd.Flags().StringVar(&reconcileLog, "log", "", "paper log file")
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "-", "output file, - for stdout")
	reconcileCmd.MarkFlagsMutuallyExclusive("roster", "shifts")
	_ = reconcileCmd.MarkFlagRequired("log")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	var shifts []dto.DigitalShift
	switch {
	case reconcileRoster != "":
		entries, err := store.LoadRosterFile(reconcileRoster)
		if err != nil {
			return err
		}
		shifts = store.NewRosterStore(entries).Shifts()
	case reconcileShifts != "":
		if shifts, err = readRecords[dto.DigitalShift](reconcileShifts); err != nil {
			return err
		}
	default:
		return errors.New("one of --roster or --shifts is required")
	}

	logs, err := readRecords[dto.PaperLogEntry](reconcileLog)
	if err != nil {
		return err
	}

	req := &dto.ReconcileRequest{Shifts: shifts, Logs: logs}
	if err := req.Validate(); err != nil {
		return err
	}

	reports := service.NewReconciler(cfg.RuleConfig()).Reconcile(shifts, logs)

	out := cmd.OutOrStdout()
	if reconcileOut != "-" {
		f, err := os.Create(reconcileOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", reconcileOut, err)
		}
		defer f.Close()
		out = f
	}
	return writeReports(out, reports)
}

// readRecords decodes a YAML or JSON list.
func readRecords[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []T
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func writeReports(w io.Writer, reports []dto.DiscrepancyReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Reports []dto.DiscrepancyReport `json:"reports"`
		Summary dto.AuditSummary        `json:"summary"`
	}{reports, dto.Summarize(reports)})
}
