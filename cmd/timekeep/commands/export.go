package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timekeepapp/timekeep/internal/report"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var groupBy string
	var outPath string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a grouped CSV time summary",
		Long: `Export aggregated tracked time as CSV. Entries spanning midnight are
split per calendar day before grouping. Variants: date, project-date-task,
project-task, project-note.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(groupBy, outPath)
		},
	}
	exportCmd.Flags().StringVar(&groupBy, "group-by", "", "Grouping variant (defaults to export.group_by from config)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (defaults to stdout)")

	return exportCmd
}

func runExport(groupBy, outPath string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if groupBy == "" {
		groupBy = a.cfg.Export.GroupBy
	}
	variant, err := report.ParseVariant(groupBy)
	if err != nil {
		return err
	}

	// Export reads the log directly; no engine state is touched.
	entries, err := a.store.LoadOrDefaultEntries()
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	projects, err := a.store.LoadOrDefaultProjects()
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	csv := report.BuildCSV(entries, projects, variant, time.Now())

	if outPath == "" {
		fmt.Print(csv)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(csv), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
