// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/db"
	"github.com/j-veylop/sleep-insight-tui/internal/fixtures"
	"github.com/j-veylop/sleep-insight-tui/internal/logger"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/settings"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
)

// SeriesPageSize is the page size used to pull chart series from the backend.
const SeriesPageSize = 500

// duplicateWindow suppresses identical score snapshots taken close together.
const duplicateWindow = time.Hour

type (
	// SettingsChangedEvent is emitted when the backend URL changes.
	SettingsChangedEvent struct {
		URL string
	}

	// UploadRecordedEvent is emitted after an upload attempt is stored.
	UploadRecordedEvent struct {
		Record models.UploadRecord
	}

	// ScoreRecordedEvent is emitted after a score snapshot is stored.
	ScoreRecordedEvent struct {
		Snapshot models.ScoreSnapshot
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SettingsChangedEvent) isServiceEvent() {}
func (UploadRecordedEvent) isServiceEvent()  {}
func (ScoreRecordedEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()           {}

// Notifier shows a desktop notification.
type Notifier func(title, body string) error

func beeepNotifier(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	settings    *settings.Store
	client      *api.Client
	database    *db.DB
	notify      Notifier
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	cfg         config.Config
	mu          sync.RWMutex
	closeOnce   sync.Once
}

// Option customizes a Manager.
type Option func(*Manager)

// WithNotifier replaces the desktop notifier. A nil notifier disables
// notifications.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		cfg:      *cfg,
		stopChan: make(chan struct{}),
	}
	if cfg.DesktopNotify {
		m.notify = beeepNotifier
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.settings, err = settings.New(cfg.SettingsPath, cfg.BackendURL)
	if err != nil {
		return nil, err
	}

	m.client = api.New(api.Config{
		BaseURL: m.settings.Get(),
		Timeout: cfg.RequestTimeout,
	})

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		_ = m.settings.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.HistoryRetentionDays > 0 {
		n, err := m.database.PruneHistory(context.Background(), cfg.HistoryRetentionDays)
		if err != nil {
			logger.Warn("failed to prune history", "error", err)
		} else if n > 0 {
			logger.Info("pruned history", "rows", n, "days", cfg.HistoryRetentionDays)
			if err := m.database.Vacuum(); err != nil {
				logger.Warn("failed to vacuum database", "error", err)
			}
		}
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.settings.Events():
			if !ok {
				return
			}
			m.handleSettingsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSettingsEvent(event settings.Event) {
	switch event.Type {
	case settings.EventChanged:
		// A queued event may be older than the store; the store is current.
		url := m.settings.Get()
		m.client.SetBaseURL(url)
		logger.Info("backend URL changed", "url", url)
		m.broadcast(SettingsChangedEvent{URL: url})

	case settings.EventError:
		m.broadcast(ErrorEvent{
			Service: "settings",
			Error:   event.Error,
		})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() config.Config {
	return m.cfg
}

// BackendURL returns the effective backend base URL.
func (m *Manager) BackendURL() string {
	return m.settings.Get()
}

// SetBackendURL persists url. The caller is expected to have trimmed it.
func (m *Manager) SetBackendURL(url string) error {
	if err := m.settings.Set(url); err != nil {
		return err
	}
	m.client.SetBaseURL(m.settings.Get())
	return nil
}

// Upload sends the export file at path and records the attempt.
func (m *Manager) Upload(ctx context.Context, path string) (api.UploadResult, error) {
	rec := models.UploadRecord{
		Timestamp:  time.Now(),
		FileName:   filepath.Base(path),
		BackendURL: m.client.BaseURL(),
	}
	if info, err := os.Stat(path); err == nil {
		rec.SizeBytes = info.Size()
	}

	logger.Info("uploading export", "file", rec.FileName, "size", humanize.Bytes(uint64(max(rec.SizeBytes, 0))), "backend", rec.BackendURL)
	result, err := m.client.Upload(ctx, path)
	if err != nil {
		rec.Error = api.Message(err)
		logger.Error("upload failed", "file", rec.FileName, "status", api.StatusCode(err), "error", err)
	} else {
		rec.Success = true
	}

	if dbErr := m.database.InsertUpload(ctx, &rec); dbErr != nil {
		logger.Warn("failed to record upload", "error", dbErr)
	} else {
		m.broadcast(UploadRecordedEvent{Record: rec})
	}

	m.notifyUpload(rec)
	return result, err
}

func (m *Manager) notifyUpload(rec models.UploadRecord) {
	if m.notify == nil {
		return
	}
	title := "Upload complete"
	body := fmt.Sprintf("%s was uploaded to %s", rec.FileName, rec.BackendURL)
	if !rec.Success {
		title = "Upload failed"
		body = rec.Error
	}
	if err := m.notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// LoadDataset loads everything the results view renders from source.
// In backend mode a summary failure is an error; series failures leave the
// corresponding chart empty.
func (m *Manager) LoadDataset(ctx context.Context, source config.Source) (*models.Dataset, error) {
	if source != config.SourceBackend {
		return fixtures.Load()
	}

	summary, err := m.client.FetchSummary(ctx)
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{Summary: *summary}
	if page, err := m.client.FetchMetrics(ctx, models.CategoryVitals, 1, SeriesPageSize); err != nil {
		logger.Warn("failed to load heart rate series", "error", err)
	} else {
		ds.HeartRate = models.HeartRateFromRecords(page.Records)
	}
	if page, err := m.client.FetchMetrics(ctx, models.CategoryEnvironment, 1, SeriesPageSize); err != nil {
		logger.Warn("failed to load sound level series", "error", err)
	} else {
		ds.SoundLevels = models.SoundFromRecords(page.Records)
	}
	return ds, nil
}

// FetchMetrics requests one page of records from the backend.
func (m *Manager) FetchMetrics(ctx context.Context, c models.Category, page, pageSize int) (*models.MetricPage, error) {
	return m.client.FetchMetrics(ctx, c, page, pageSize)
}

// RecordScore computes the score for ds and stores a snapshot. An identical
// score from the same source within the last hour is not stored again.
func (m *Manager) RecordScore(ctx context.Context, ds *models.Dataset, source config.Source) (models.ScoreSnapshot, error) {
	stats := ds.Summary.Stats
	snap := models.ScoreSnapshot{
		Timestamp:       time.Now(),
		Source:          string(source),
		Score:           sleep.Score(stats, ds.Summary.Trend),
		AvgSleepMinutes: stats.AvgSleepMinutes,
		RemRatio:        stats.RemRatioOr(models.NeutralRemRatio),
		AvgHR:           stats.HeartRateOr(models.NeutralHeartRate),
		AvgSoundDB:      stats.SoundLevelOr(models.NeutralSoundLevel),
	}

	latest, err := m.database.LatestScore(ctx)
	if err != nil {
		return snap, err
	}
	if latest != nil && latest.Score == snap.Score && latest.Source == snap.Source &&
		snap.Timestamp.Sub(latest.Timestamp) < duplicateWindow {
		return snap, nil
	}

	if err := m.database.InsertScoreSnapshot(ctx, &snap); err != nil {
		return snap, err
	}
	m.broadcast(ScoreRecordedEvent{Snapshot: snap})
	return snap, nil
}

// ScoreHistory returns the score trend over tr.
func (m *Manager) ScoreHistory(ctx context.Context, tr models.TimeRange) (*models.ScoreTrend, error) {
	snaps, err := m.database.ScoreSnapshots(ctx, tr.Since(time.Now()))
	if err != nil {
		return nil, err
	}
	return models.NewScoreTrend(tr, snaps), nil
}

// RecentUploads returns the latest upload attempts, newest first.
func (m *Manager) RecentUploads(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	return m.database.RecentUploads(ctx, limit)
}

// Client returns the API client.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Settings returns the settings store.
func (m *Manager) Settings() *settings.Store {
	return m.settings
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.settings.Close(); err != nil {
			errs = append(errs, err)
		}
		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
