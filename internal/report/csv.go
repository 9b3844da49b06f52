package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/timekeepapp/timekeep/pkg/models"
)

// Variant selects the grouping key of a CSV summary.
type Variant string

const (
	// VariantDate groups by calendar day.
	VariantDate Variant = "date"
	// VariantProjectDateTask groups by project, day, and task.
	VariantProjectDateTask Variant = "project-date-task"
	// VariantProjectTask groups by project and task across all days.
	VariantProjectTask Variant = "project-task"
	// VariantProjectNote groups by project and note across all days.
	VariantProjectNote Variant = "project-note"
)

// NoTaskPlaceholder replaces a blank task/note in every report variant.
const NoTaskPlaceholder = "(no task)"

// ParseVariant validates a variant name from config or a CLI flag.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantDate, VariantProjectDateTask, VariantProjectTask, VariantProjectNote:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown report variant %q", s)
}

const dateLayout = "2006-01-02"

// bucket is one aggregated row before formatting.
type bucket struct {
	project string
	date    string
	task    string
	seconds int64
}

type bucketKey struct {
	project string
	date    string
	task    string
}

// BuildCSV renders the grouped summary for a variant. Every entry span is
// first split at local-midnight boundaries so a slice never leaks across
// days; slices are then summed per bucket. Hours use three decimals, rounded
// half away from zero, with a locale-invariant "." separator; a nonzero
// bucket below half a thousandth of an hour keeps six decimals instead of
// rendering as zero.
//
// Sort order is deterministic per variant: project name (case-insensitive),
// then date, then task, restricted to the keys the variant uses.
func BuildCSV(entries []models.TimeEntry, projects []models.Project, variant Variant, now time.Time) string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	nameOf := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "Unknown"
	}

	buckets := make(map[bucketKey]*bucket)
	for i := range entries {
		for _, slice := range SliceByDay(&entries[i], now) {
			key := bucketKey{}
			switch variant {
			case VariantDate:
				key.date = slice.Day.Format(dateLayout)
			case VariantProjectDateTask:
				key.project = nameOf(slice.Entry.ProjectID)
				key.date = slice.Day.Format(dateLayout)
				key.task = taskLabel(slice.Entry.Note)
			case VariantProjectTask, VariantProjectNote:
				key.project = nameOf(slice.Entry.ProjectID)
				key.task = taskLabel(slice.Entry.Note)
			}
			b, ok := buckets[key]
			if !ok {
				b = &bucket{project: key.project, date: key.date, task: key.task}
				buckets[key] = b
			}
			b.seconds += slice.Seconds
		}
	}

	rows := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, b)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if pa, pb := strings.ToLower(a.project), strings.ToLower(b.project); pa != pb {
			return pa < pb
		}
		if a.date != b.date {
			return a.date < b.date
		}
		return a.task < b.task
	})

	var sb strings.Builder
	sb.WriteString(strings.Join(header(variant), ","))
	sb.WriteByte('\n')
	for _, b := range rows {
		sb.WriteString(strings.Join(fields(variant, b), ","))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func header(variant Variant) []string {
	switch variant {
	case VariantDate:
		return []string{"date", "hours"}
	case VariantProjectDateTask:
		return []string{"project", "date", "task", "hours"}
	case VariantProjectTask:
		return []string{"project", "task", "hours"}
	case VariantProjectNote:
		return []string{"project", "note", "hours"}
	}
	return nil
}

func fields(variant Variant, b *bucket) []string {
	hours := FormatHours(b.seconds)
	switch variant {
	case VariantDate:
		return []string{escapeField(b.date), hours}
	case VariantProjectDateTask:
		return []string{escapeField(b.project), escapeField(b.date), escapeField(b.task), hours}
	case VariantProjectTask, VariantProjectNote:
		return []string{escapeField(b.project), escapeField(b.task), hours}
	}
	return nil
}

func taskLabel(note string) string {
	if strings.TrimSpace(note) == "" {
		return NoTaskPlaceholder
	}
	return note
}

// FormatHours renders seconds as fixed-point hours. Three decimals, rounded
// to nearest with ties away from zero. A positive duration that would round
// to 0.000 is rendered with six decimals so it stays visible (one second is
// "0.000278", not "0.000").
func FormatHours(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	// milli-hours, round half away from zero: floor((2x + d) / 2d)
	milli := (seconds*1000*2 + 3600) / (3600 * 2)
	if milli == 0 && seconds > 0 {
		micro := (seconds*1000000*2 + 3600) / (3600 * 2)
		return fmt.Sprintf("%d.%06d", micro/1000000, micro%1000000)
	}
	return fmt.Sprintf("%d.%03d", milli/1000, milli%1000)
}

// escapeField applies standard CSV quoting: a field containing a comma,
// quote, or newline is wrapped in double quotes with internal quotes
// doubled.
func escapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
