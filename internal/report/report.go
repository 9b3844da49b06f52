// Package report derives time totals and CSV summaries from the entry log.
// Everything here is a pure function over a snapshot of entries: no state,
// no I/O, safe to call concurrently.
package report

import (
	"time"

	"github.com/timekeepapp/timekeep/pkg/models"
)

// RunningSeconds returns the live elapsed seconds of the open entry, or 0
// when nothing is running. Floored to whole seconds, never negative.
func RunningSeconds(entries []models.TimeEntry, now time.Time) int64 {
	for i := range entries {
		if entries[i].Running() {
			return entries[i].Seconds(now)
		}
	}
	return 0
}

// TotalSecondsToday sums, per entry of the project, the overlap between the
// entry's span and the current local day. An entry that started yesterday
// and is still open contributes only its portion from start-of-day onward;
// open entries count live progress up to now.
func TotalSecondsToday(entries []models.TimeEntry, projectID string, now time.Time) int64 {
	dayStart := startOfDay(now)
	var total int64
	for i := range entries {
		entry := &entries[i]
		if entry.ProjectID != projectID {
			continue
		}
		total += overlapSeconds(entry.StartAt, entryEnd(entry, now), dayStart, now)
	}
	return total
}

// TotalSecondsAllTime sums the full duration of every entry of the project,
// counting an open entry up to now. Each entry clamps to >= 0.
func TotalSecondsAllTime(entries []models.TimeEntry, projectID string, now time.Time) int64 {
	var total int64
	for i := range entries {
		if entries[i].ProjectID == projectID {
			total += entries[i].Seconds(now)
		}
	}
	return total
}

// entryEnd resolves an entry's effective end, using now while it is open.
func entryEnd(entry *models.TimeEntry, now time.Time) time.Time {
	if entry.EndAt != nil {
		return *entry.EndAt
	}
	return now
}

// overlapSeconds returns the length in whole seconds of the intersection of
// [start, end) and [windowStart, windowEnd), clamped to >= 0.
func overlapSeconds(start, end, windowStart, windowEnd time.Time) int64 {
	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// startOfDay returns local midnight of t's calendar day.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaySlice is the portion of one entry that falls on a single calendar day.
type DaySlice struct {
	Entry   *models.TimeEntry
	Day     time.Time // local midnight of the slice's day
	Seconds int64
}

// SliceByDay splits an entry's span into one slice per local calendar day it
// touches. The sum of the slice seconds equals the full span in seconds: the
// remainder from flooring each day's overlap is carried into the final
// slice so no second is lost at a midnight boundary.
func SliceByDay(entry *models.TimeEntry, now time.Time) []DaySlice {
	start := entry.StartAt
	end := entryEnd(entry, now)
	if !end.After(start) {
		return nil
	}

	totalSeconds := int64(end.Sub(start) / time.Second)

	var slices []DaySlice
	var counted int64
	for day := startOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		secs := overlapSeconds(start, end, day, next)
		slices = append(slices, DaySlice{Entry: entry, Day: day, Seconds: secs})
		counted += secs
	}

	if len(slices) > 0 && counted != totalSeconds {
		slices[len(slices)-1].Seconds += totalSeconds - counted
	}
	return slices
}
