package db

import (
	"context"
	"testing"
	"time"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

func TestInsertUpload_RecentUploads(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	uploads := []models.UploadRecord{
		{Timestamp: base, FileName: "a.zip", SizeBytes: 1024, BackendURL: "http://localhost:8000", Success: true},
		{Timestamp: base.Add(time.Hour), FileName: "b.xml", SizeBytes: 10, BackendURL: "http://localhost:8000", Error: "Upload failed: 500"},
		{Timestamp: base.Add(2 * time.Hour), FileName: "c.zip", SizeBytes: 2048, BackendURL: "http://other", Success: true},
	}
	for i := range uploads {
		if err := db.InsertUpload(ctx, &uploads[i]); err != nil {
			t.Fatalf("InsertUpload failed: %v", err)
		}
	}

	got, err := db.RecentUploads(ctx, 2)
	if err != nil {
		t.Fatalf("RecentUploads failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 uploads, got %d", len(got))
	}
	if got[0].FileName != "c.zip" || got[1].FileName != "b.xml" {
		t.Errorf("Unexpected order: %s, %s", got[0].FileName, got[1].FileName)
	}
	if got[1].Success || got[1].Error != "Upload failed: 500" {
		t.Errorf("Failed upload not preserved: %+v", got[1])
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, base.Add(2*time.Hour))
	}
	if got[0].SizeBytes != 2048 || got[0].BackendURL != "http://other" {
		t.Errorf("Unexpected record: %+v", got[0])
	}
}

func TestScoreSnapshots(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	snaps := []models.ScoreSnapshot{
		{Timestamp: now.AddDate(0, 0, -40), Score: 55, Source: "backend"},
		{Timestamp: now.AddDate(0, 0, -3), Score: 72, AvgSleepMinutes: 410},
		{Timestamp: now.Add(-time.Hour), Score: 81, RemRatio: 0.2, AvgHR: 65, AvgSoundDB: 40},
	}
	for i := range snaps {
		if err := db.InsertScoreSnapshot(ctx, &snaps[i]); err != nil {
			t.Fatalf("InsertScoreSnapshot failed: %v", err)
		}
	}

	all, err := db.ScoreSnapshots(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ScoreSnapshots failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(all))
	}
	if all[0].Score != 55 || all[0].Source != "backend" {
		t.Errorf("Unexpected first snapshot: %+v", all[0])
	}
	if all[1].Source != "mock" {
		t.Errorf("Default source = %q, want mock", all[1].Source)
	}

	week, err := db.ScoreSnapshots(ctx, models.TimeRange7Days.Since(now))
	if err != nil {
		t.Fatalf("ScoreSnapshots failed: %v", err)
	}
	if len(week) != 2 {
		t.Fatalf("Expected 2 snapshots in 7 days, got %d", len(week))
	}
	if week[1].Score != 81 || week[1].AvgHR != 65 {
		t.Errorf("Unexpected latest snapshot: %+v", week[1])
	}

	latest, err := db.LatestScore(ctx)
	if err != nil {
		t.Fatalf("LatestScore failed: %v", err)
	}
	if latest == nil || latest.Score != 81 {
		t.Errorf("LatestScore = %+v, want score 81", latest)
	}
}

func TestLatestScore_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	latest, err := db.LatestScore(context.Background())
	if err != nil {
		t.Fatalf("LatestScore failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil, got %+v", latest)
	}
}

func TestPruneHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	_ = db.InsertScoreSnapshot(ctx, &models.ScoreSnapshot{Timestamp: now.AddDate(0, 0, -100), Score: 1})
	_ = db.InsertScoreSnapshot(ctx, &models.ScoreSnapshot{Timestamp: now, Score: 2})
	_ = db.InsertUpload(ctx, &models.UploadRecord{Timestamp: now.AddDate(0, 0, -100), FileName: "old.zip", BackendURL: "x"})

	deleted, err := db.PruneHistory(ctx, 90)
	if err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	remaining, _ := db.ScoreSnapshots(ctx, time.Time{})
	if len(remaining) != 1 || remaining[0].Score != 2 {
		t.Errorf("Unexpected remaining snapshots: %+v", remaining)
	}
}

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-03-01 08:00:00", true},
		{"2026-03-01T08:00:00Z", true},
		{"2026-03-01T08:00:00.123456789Z", true},
		{"2026-03-01T08:00:00", true},
		{"yesterday", false},
	}
	for _, tt := range tests {
		if _, ok := parseTimeString(tt.in); ok != tt.ok {
			t.Errorf("parseTimeString(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
