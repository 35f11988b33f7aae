// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// Loading resources.
const (
	ResourceDataset = "dataset"
	ResourceUpload  = "upload"
	ResourceExport  = "export"
	ResourceHistory = "history"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// AppState is shared between the root model and the tabs.
type AppState struct {
	mu sync.RWMutex

	source  config.Source
	dataset *models.Dataset
	score   int

	loading     map[string]bool
	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewAppState creates the shared state with the initial results source.
func NewAppState(source config.Source) *AppState {
	if source == "" {
		source = config.SourceMock
	}
	return &AppState{
		source:        source,
		loading:       make(map[string]bool),
		notifications: make([]Notification, 0),
	}
}

// Source returns where the results tab reads from.
func (s *AppState) Source() config.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetSource switches the results source.
func (s *AppState) SetSource(source config.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
}

// ToggleSource flips between mock and backend and returns the new source.
func (s *AppState) ToggleSource() config.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == config.SourceBackend {
		s.source = config.SourceMock
	} else {
		s.source = config.SourceBackend
	}
	return s.source
}

// SetDataset stores the last loaded dataset and its score.
func (s *AppState) SetDataset(ds *models.Dataset, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.score = score
	s.lastUpdated = time.Now()
}

// Dataset returns the last loaded dataset, or nil.
func (s *AppState) Dataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Score returns the score of the last loaded dataset.
func (s *AppState) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// SetLoading sets the loading state for a specific resource.
func (s *AppState) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[resource] = true
	} else {
		delete(s.loading, resource)
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *AppState) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

// LastUpdated returns when the dataset was last replaced.
func (s *AppState) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification adds a new notification and returns its ID.
func (s *AppState) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *AppState) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *AppState) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *AppState) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *AppState) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *AppState) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
