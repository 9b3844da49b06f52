package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timekeepapp/timekeep/internal/report"
	"github.com/timekeepapp/timekeep/pkg/models"
)

// NewAddCommand creates the add command
func NewAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new project and select it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return nil
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}

	eng.AddProject(name)
	fmt.Printf("Added project %q\n", name)
	return nil
}

// NewStartCommand creates the start command
func NewStartCommand() *cobra.Command {
	var projectFlag string

	startCmd := &cobra.Command{
		Use:   "start [note...]",
		Short: "Start tracking a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(projectFlag, strings.Join(args, " "))
		},
	}
	startCmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Project name or id (defaults to the selected project)")

	return startCmd
}

func runStart(project, note string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}

	projectID := ""
	if project != "" {
		projectID = resolveProject(eng.Snapshot().Projects, project)
		if projectID == "" {
			return fmt.Errorf("no project matching %q", project)
		}
	}

	eng.StartSession(projectID, note)

	snap := eng.Snapshot()
	if snap.RunningEntry == nil {
		fmt.Println("Nothing started (no project selected, or a note is required)")
		return nil
	}
	fmt.Printf("Tracking %s\n", eng.ProjectName(snap.RunningEntry.ProjectID))
	return nil
}

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running session",
		RunE:  runStop,
	}
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}

	if eng.Snapshot().RunningEntry == nil {
		fmt.Println("Nothing is running")
		return nil
	}

	eng.StopSession(models.EndReasonUser)
	fmt.Println("Stopped")
	return nil
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running session and today's totals",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}

	snap := eng.Snapshot()
	now := time.Now()

	if snap.RunningEntry != nil {
		note := snap.RunningEntry.Note
		if note == "" {
			note = report.NoTaskPlaceholder
		}
		fmt.Printf("Running: %s · %s (%s elapsed)\n",
			eng.ProjectName(snap.RunningEntry.ProjectID),
			note,
			formatSeconds(report.RunningSeconds(snap.Entries, now)))
	} else {
		fmt.Println("Not tracking")
	}

	for _, project := range snap.Projects {
		today := report.TotalSecondsToday(snap.Entries, project.ID, now)
		if today == 0 && project.ID != snap.SelectedProjectID {
			continue
		}
		marker := " "
		if project.ID == snap.SelectedProjectID {
			marker = "*"
		}
		fmt.Printf("%s %-24s today %s\n", marker, project.Name, formatSeconds(today))
	}
	return nil
}

// resolveProject matches a project by exact id, then case-insensitive name.
func resolveProject(projects []models.Project, nameOrID string) string {
	for _, p := range projects {
		if p.ID == nameOrID {
			return p.ID
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, nameOrID) {
			return p.ID
		}
	}
	return ""
}

func formatSeconds(seconds int64) string {
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
