package models

import "time"

// EndReason records who concluded a time entry.
type EndReason string

const (
	// EndReasonUser marks a stop the user asked for explicitly.
	EndReasonUser EndReason = "user"
	// EndReasonSystem marks an automatic stop (screen lock, sleep, screensaver).
	EndReasonSystem EndReason = "system"
)

// Project represents a user-defined project that time is tracked against
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimeEntry represents one contiguous span of tracked time against a project.
// EndAt is nil while the entry is still running; at most one entry in a log
// may be open at any time. Entries referencing an unknown project are
// tolerated and rendered as "Unknown".
type TimeEntry struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	StartAt     time.Time  `json:"startAt"`
	EndAt       *time.Time `json:"endAt,omitempty"`
	EndedReason *EndReason `json:"endedReason,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// Running reports whether the entry is still open.
func (e *TimeEntry) Running() bool {
	return e.EndAt == nil
}

// Seconds returns the entry's duration in whole seconds, using now as the end
// for a still-open entry. Never negative.
func (e *TimeEntry) Seconds(now time.Time) int64 {
	end := now
	if e.EndAt != nil {
		end = *e.EndAt
	}
	secs := int64(end.Sub(e.StartAt) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}
