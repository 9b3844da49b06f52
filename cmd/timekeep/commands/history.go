package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timekeepapp/timekeep/internal/history"
	"github.com/timekeepapp/timekeep/internal/report"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history [project]",
		Short: "Show aggregate stats, or recent entries for one project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			return runHistory(project, limit)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to list per project")

	return historyCmd
}

func runHistory(project string, limit int) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	projects, err := a.store.LoadOrDefaultProjects()
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	if project == "" {
		stats, err := history.FetchProjectStats(a.store, projects)
		if err != nil {
			return fmt.Errorf("failed to fetch project stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("No entries recorded")
			return nil
		}
		for _, st := range stats {
			fmt.Printf("%-24s %4d entries  %9s  last %s\n",
				st.Name,
				st.EntryCount,
				formatSeconds(st.TotalSeconds),
				st.LastActivity.Format("2006-01-02 15:04"))
		}
		return nil
	}

	projectID := resolveProject(projects, project)
	if projectID == "" {
		return fmt.Errorf("no project matching %q", project)
	}

	records, err := history.FetchRecentEntries(a.store, projectID, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch entries: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No entries for this project")
		return nil
	}
	for _, rec := range records {
		note := rec.Note
		if strings.TrimSpace(note) == "" {
			note = report.NoTaskPlaceholder
		}
		open := ""
		if rec.Open {
			open = " (running)"
		}
		fmt.Printf("%s  %9s  %s%s\n",
			rec.StartAt.Format("2006-01-02 15:04"),
			formatSeconds(rec.Seconds),
			note,
			open)
	}
	return nil
}
