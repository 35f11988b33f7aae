package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var timeFormats = []string{
	timeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

// InsertUpload records an upload attempt.
func (db *DB) InsertUpload(ctx context.Context, rec *models.UploadRecord) error {
	query := `
		INSERT INTO uploads (timestamp, file_name, size_bytes, backend_url, success, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		formatTime(rec.Timestamp),
		rec.FileName,
		rec.SizeBytes,
		rec.BackendURL,
		boolToInt(rec.Success),
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

// RecentUploads returns the most recent uploads, newest first.
func (db *DB) RecentUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	query := `
		SELECT timestamp, file_name, size_bytes, backend_url, success, error
		FROM uploads
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.UploadRecord
	for rows.Next() {
		var rec models.UploadRecord
		var ts string
		var success int
		var errStr sql.NullString
		if err := rows.Scan(&ts, &rec.FileName, &rec.SizeBytes, &rec.BackendURL, &success, &errStr); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		rec.Timestamp, _ = parseTimeString(ts)
		rec.Success = success != 0
		rec.Error = errStr.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertScoreSnapshot stores a computed score.
func (db *DB) InsertScoreSnapshot(ctx context.Context, snap *models.ScoreSnapshot) error {
	query := `
		INSERT INTO score_snapshots (
			timestamp, source, score, avg_sleep_minutes, rem_ratio, avg_hr, avg_sound_db
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	source := snap.Source
	if source == "" {
		source = "mock"
	}
	_, err := db.ExecContext(ctx, query,
		formatTime(snap.Timestamp),
		source,
		snap.Score,
		snap.AvgSleepMinutes,
		snap.RemRatio,
		snap.AvgHR,
		snap.AvgSoundDB,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score snapshot: %w", err)
	}
	return nil
}

// ScoreSnapshots returns snapshots at or after since in chronological order.
// A zero since returns everything.
func (db *DB) ScoreSnapshots(ctx context.Context, since time.Time) ([]models.ScoreSnapshot, error) {
	query := `
		SELECT timestamp, source, score, avg_sleep_minutes, rem_ratio, avg_hr, avg_sound_db
		FROM score_snapshots
		WHERE timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`
	lower := ""
	if !since.IsZero() {
		lower = since.UTC().Format(timeLayout)
	}

	rows, err := db.QueryContext(ctx, query, lower)
	if err != nil {
		return nil, fmt.Errorf("failed to query score snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ScoreSnapshot
	for rows.Next() {
		var snap models.ScoreSnapshot
		var ts string
		if err := rows.Scan(&ts, &snap.Source, &snap.Score, &snap.AvgSleepMinutes,
			&snap.RemRatio, &snap.AvgHR, &snap.AvgSoundDB); err != nil {
			return nil, fmt.Errorf("failed to scan score snapshot: %w", err)
		}
		snap.Timestamp, _ = parseTimeString(ts)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// LatestScore returns the most recent snapshot, or nil when there is none.
func (db *DB) LatestScore(ctx context.Context) (*models.ScoreSnapshot, error) {
	query := `
		SELECT timestamp, source, score, avg_sleep_minutes, rem_ratio, avg_hr, avg_sound_db
		FROM score_snapshots
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`
	var snap models.ScoreSnapshot
	var ts string
	err := db.QueryRowContext(ctx, query).Scan(&ts, &snap.Source, &snap.Score,
		&snap.AvgSleepMinutes, &snap.RemRatio, &snap.AvgHR, &snap.AvgSoundDB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest score: %w", err)
	}
	snap.Timestamp, _ = parseTimeString(ts)
	return &snap, nil
}

// PruneHistory deletes rows older than the given number of days.
func (db *DB) PruneHistory(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(timeLayout)

	var total int64
	for _, table := range []string{"uploads", "score_snapshots"} {
		res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE timestamp < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
