// Package history answers ad-hoc questions about the persisted entry log by
// querying the JSON collection files with DuckDB. It is read-only reporting;
// the engine never writes through this path.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/timekeepapp/timekeep/internal/db"
	"github.com/timekeepapp/timekeep/internal/store"
	"github.com/timekeepapp/timekeep/pkg/models"
)

// ProjectStats aggregates the log for one project.
type ProjectStats struct {
	ProjectID    string
	Name         string
	EntryCount   int
	TotalSeconds int64
	LastActivity time.Time
}

// EntryRecord is one row of the recent-entries listing.
type EntryRecord struct {
	StartAt time.Time
	Seconds int64
	Note    string
	Open    bool
}

// FetchProjectStats returns per-project entry counts, total tracked seconds,
// and last activity, most recent first. Open entries count up to now.
func FetchProjectStats(s *store.Store, projects []models.Project) ([]ProjectStats, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}
	// Don't close the singleton connection

	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	statsQuery := fmt.Sprintf(`
		SELECT
			projectId,
			COUNT(*) as entry_count,
			CAST(SUM(GREATEST(epoch(COALESCE(endAt, now())) - epoch(startAt), 0)) AS BIGINT) as total_seconds,
			MAX(COALESCE(endAt, startAt)) as last_activity
		FROM read_json('%s', format = 'array')
		WHERE projectId IS NOT NULL
		GROUP BY projectId
		ORDER BY MAX(COALESCE(endAt, startAt)) DESC
	`, s.Path(store.CollectionEntries))

	rows, err := database.Query(statsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute stats query: %w", err)
	}
	defer rows.Close()

	var stats []ProjectStats
	for rows.Next() {
		var st ProjectStats
		var lastActivity sql.NullTime

		if err := rows.Scan(&st.ProjectID, &st.EntryCount, &st.TotalSeconds, &lastActivity); err != nil {
			continue
		}

		if name, ok := names[st.ProjectID]; ok {
			st.Name = name
		} else {
			st.Name = "Unknown"
		}

		if lastActivity.Valid {
			st.LastActivity = lastActivity.Time.Local()
		}

		stats = append(stats, st)
	}

	return stats, nil
}

// FetchRecentEntries returns the newest entries for one project, capped at
// limit.
func FetchRecentEntries(s *store.Store, projectID string, limit int) ([]EntryRecord, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}
	// Don't close the singleton connection

	entriesQuery := fmt.Sprintf(`
		SELECT
			startAt,
			CAST(GREATEST(epoch(COALESCE(endAt, now())) - epoch(startAt), 0) AS BIGINT) as seconds,
			COALESCE(note, '') as note,
			endAt IS NULL as open
		FROM read_json('%s', format = 'array')
		WHERE projectId = ?
		ORDER BY startAt DESC
		LIMIT %d
	`, s.Path(store.CollectionEntries), limit)

	rows, err := database.Query(entriesQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute entries query: %w", err)
	}
	defer rows.Close()

	var records []EntryRecord
	for rows.Next() {
		var rec EntryRecord
		var startAt sql.NullTime

		if err := rows.Scan(&startAt, &rec.Seconds, &rec.Note, &rec.Open); err != nil {
			continue
		}

		if startAt.Valid {
			rec.StartAt = startAt.Time.Local()
		}

		records = append(records, rec)
	}

	return records, nil
}
