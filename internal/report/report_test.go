package report

import (
	"strings"
	"testing"
	"time"

	"github.com/timekeepapp/timekeep/pkg/models"
)

func closed(id, projectID string, start, end time.Time, note string) models.TimeEntry {
	reason := models.EndReasonUser
	return models.TimeEntry{
		ID:          id,
		ProjectID:   projectID,
		StartAt:     start,
		EndAt:       &end,
		EndedReason: &reason,
		Note:        note,
	}
}

// TestRunningSeconds verifies live elapsed time and the idle zero.
func TestRunningSeconds(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)

	if got := RunningSeconds(nil, now); got != 0 {
		t.Errorf("expected 0 with no entries, got %d", got)
	}

	entries := []models.TimeEntry{
		{ID: "e1", ProjectID: "p1", StartAt: now.Add(-90 * time.Second)},
	}
	if got := RunningSeconds(entries, now); got != 90 {
		t.Errorf("expected 90, got %d", got)
	}

	// A clock skew producing a negative span clamps to zero.
	entries[0].StartAt = now.Add(30 * time.Second)
	if got := RunningSeconds(entries, now); got != 0 {
		t.Errorf("expected 0 for negative span, got %d", got)
	}
}

// TestTotalSecondsToday verifies the local-day window: two entries today
// count, yesterday's entry does not.
func TestTotalSecondsToday(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	today := func(h, m int) time.Time {
		return time.Date(2024, 1, 2, h, m, 0, 0, time.Local)
	}

	entries := []models.TimeEntry{
		closed("e1", "A", today(9, 0), today(9, 30), ""),
		closed("e2", "A", today(10, 0), today(10, 30), ""),
		closed("e3", "A", time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local), time.Date(2024, 1, 1, 11, 0, 0, 0, time.Local), ""),
		closed("e4", "B", today(9, 0), today(11, 0), ""),
	}

	if got := TotalSecondsToday(entries, "A", now); got != 3600 {
		t.Errorf("expected 3600, got %d", got)
	}
}

// TestTotalSecondsTodaySpanningMidnight verifies only the today portion of
// an overnight entry counts.
func TestTotalSecondsTodaySpanningMidnight(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	entries := []models.TimeEntry{
		closed("e1", "A",
			time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local),
			time.Date(2024, 1, 2, 1, 0, 0, 0, time.Local),
			""),
	}

	if got := TotalSecondsToday(entries, "A", now); got != 3600 {
		t.Errorf("expected 3600 (the portion after midnight), got %d", got)
	}
}

// TestTotalSecondsTodayOpenEntry verifies an open entry counts live progress
// up to now.
func TestTotalSecondsTodayOpenEntry(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	entries := []models.TimeEntry{
		{ID: "e1", ProjectID: "A", StartAt: now.Add(-15 * time.Minute)},
	}

	if got := TotalSecondsToday(entries, "A", now); got != 900 {
		t.Errorf("expected 900, got %d", got)
	}
}

// TestTotalSecondsAllTime sums full durations regardless of day.
func TestTotalSecondsAllTime(t *testing.T) {
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	entries := []models.TimeEntry{
		closed("e1", "A", time.Date(2023, 12, 1, 9, 0, 0, 0, time.Local), time.Date(2023, 12, 1, 10, 0, 0, 0, time.Local), ""),
		{ID: "e2", ProjectID: "A", StartAt: now.Add(-30 * time.Minute)},
		closed("e3", "B", time.Date(2023, 12, 1, 9, 0, 0, 0, time.Local), time.Date(2023, 12, 1, 10, 0, 0, 0, time.Local), ""),
	}

	if got := TotalSecondsAllTime(entries, "A", now); got != 5400 {
		t.Errorf("expected 5400, got %d", got)
	}
}

// TestSliceByDayMidnightSplit verifies the canonical case: 23:00-01:00
// yields two one-hour slices with the total preserved exactly.
func TestSliceByDayMidnightSplit(t *testing.T) {
	entry := closed("e1", "A",
		time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local),
		time.Date(2024, 1, 2, 1, 0, 0, 0, time.Local),
		"")
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	slices := SliceByDay(&entry, now)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Day.Day() != 1 || slices[0].Seconds != 3600 {
		t.Errorf("first slice wrong: day %d, %d seconds", slices[0].Day.Day(), slices[0].Seconds)
	}
	if slices[1].Day.Day() != 2 || slices[1].Seconds != 3600 {
		t.Errorf("second slice wrong: day %d, %d seconds", slices[1].Day.Day(), slices[1].Seconds)
	}

	var total int64
	for _, s := range slices {
		total += s.Seconds
	}
	if want := entry.Seconds(now); total != want {
		t.Errorf("slice total %d != entry total %d", total, want)
	}
}

// TestSliceByDaySingleDay verifies an entry within one day yields one slice.
func TestSliceByDaySingleDay(t *testing.T) {
	entry := closed("e1", "A",
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		time.Date(2024, 1, 1, 17, 30, 0, 0, time.Local),
		"")
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	slices := SliceByDay(&entry, now)
	if len(slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(slices))
	}
	if slices[0].Seconds != 8*3600+1800 {
		t.Errorf("expected 30600 seconds, got %d", slices[0].Seconds)
	}
}

// TestSliceByDayMultiDay verifies a span across several midnights keeps the
// total exact.
func TestSliceByDayMultiDay(t *testing.T) {
	entry := closed("e1", "A",
		time.Date(2024, 1, 1, 22, 30, 15, 0, time.Local),
		time.Date(2024, 1, 4, 3, 15, 45, 0, time.Local),
		"")
	now := time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)

	slices := SliceByDay(&entry, now)
	if len(slices) != 4 {
		t.Fatalf("expected 4 slices, got %d", len(slices))
	}

	var total int64
	for _, s := range slices {
		total += s.Seconds
	}
	if want := entry.Seconds(now); total != want {
		t.Errorf("slice total %d != entry total %d", total, want)
	}
}

// TestFormatHours covers the rounding rule: three decimals, ties away from
// zero, and six decimals for positive sub-thousandth durations.
func TestFormatHours(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{0, "0.000"},
		{5400, "1.500"},    // 1h30m
		{3600, "1.000"},    // exact hour
		{9, "0.003"},       // 2.5 milli-hours rounds away from zero
		{1, "0.000278"},    // one second stays visible
		{2, "0.001"},       // two seconds round up to a milli-hour
		{36000, "10.000"},  // ten hours
		{4321, "1.200"},    // 1.20028 h
		{86400, "24.000"},  // full day
	}
	for _, tc := range cases {
		if got := FormatHours(tc.seconds); got != tc.want {
			t.Errorf("FormatHours(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

// TestBuildCSVDateVariant verifies grouping by day, the header, and the
// trailing newline.
func TestBuildCSVDateVariant(t *testing.T) {
	projects := []models.Project{{ID: "p1", Name: "Website"}}
	entries := []models.TimeEntry{
		closed("e1", "p1",
			time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local),
			time.Date(2024, 1, 2, 1, 0, 0, 0, time.Local),
			"deploy"),
	}
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	got := BuildCSV(entries, projects, VariantDate, now)
	want := "date,hours\n2024-01-01,1.000\n2024-01-02,1.000\n"
	if got != want {
		t.Errorf("unexpected CSV:\n%q\nwant:\n%q", got, want)
	}
}

// TestBuildCSVProjectDateTask verifies the full key tuple, sorting, and the
// blank-task placeholder.
func TestBuildCSVProjectDateTask(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Name: "zeta"},
		{ID: "p2", Name: "Alpha"},
	}
	day := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.Local) }
	entries := []models.TimeEntry{
		closed("e1", "p1", day(9), day(10), "review"),
		closed("e2", "p2", day(10), day(11), ""),
		closed("e3", "p2", day(12), day(13), ""),
	}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	got := BuildCSV(entries, projects, VariantProjectDateTask, now)
	want := "project,date,task,hours\n" +
		"Alpha,2024-01-01,(no task),2.000\n" +
		"zeta,2024-01-01,review,1.000\n"
	if got != want {
		t.Errorf("unexpected CSV:\n%q\nwant:\n%q", got, want)
	}
}

// TestBuildCSVEscaping verifies comma, quote, and newline fields get quoted
// with internal quotes doubled.
func TestBuildCSVEscaping(t *testing.T) {
	projects := []models.Project{{ID: "p1", Name: `Acme, "Inc"`}}
	entries := []models.TimeEntry{
		closed("e1", "p1",
			time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
			time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
			"fix\nnewline"),
	}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	got := BuildCSV(entries, projects, VariantProjectTask, now)
	want := "project,task,hours\n" +
		"\"Acme, \"\"Inc\"\"\",\"fix\nnewline\",1.000\n"
	if got != want {
		t.Errorf("unexpected CSV:\n%q\nwant:\n%q", got, want)
	}
}

// TestBuildCSVUnknownProject verifies dangling project references render as
// Unknown instead of failing.
func TestBuildCSVUnknownProject(t *testing.T) {
	entries := []models.TimeEntry{
		closed("e1", "ghost",
			time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
			time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local),
			"work"),
	}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	got := BuildCSV(entries, nil, VariantProjectTask, now)
	if !strings.Contains(got, "Unknown,work,1.000") {
		t.Errorf("expected Unknown project row, got:\n%q", got)
	}
}

// TestParseVariant accepts the four named variants and rejects others.
func TestParseVariant(t *testing.T) {
	for _, name := range []string{"date", "project-date-task", "project-task", "project-note"} {
		if _, err := ParseVariant(name); err != nil {
			t.Errorf("ParseVariant(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseVariant("weekly"); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}
