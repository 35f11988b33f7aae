package app

import (
	"testing"
	"time"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

func TestNewAppState(t *testing.T) {
	s := NewAppState("")
	if s.Source() != config.SourceMock {
		t.Errorf("Source() = %q, want mock", s.Source())
	}
	if s.AnyLoading() {
		t.Error("no resource should be loading initially")
	}
	if s.Dataset() != nil {
		t.Error("Dataset() should be nil initially")
	}

	if got := NewAppState(config.SourceBackend).Source(); got != config.SourceBackend {
		t.Errorf("Source() = %q, want backend", got)
	}
}

func TestAppState_ToggleSource(t *testing.T) {
	s := NewAppState(config.SourceMock)
	if got := s.ToggleSource(); got != config.SourceBackend {
		t.Errorf("ToggleSource() = %q, want backend", got)
	}
	if got := s.ToggleSource(); got != config.SourceMock {
		t.Errorf("ToggleSource() = %q, want mock", got)
	}
	s.SetSource(config.SourceBackend)
	if s.Source() != config.SourceBackend {
		t.Error("SetSource did not apply")
	}
}

func TestAppState_Dataset(t *testing.T) {
	s := NewAppState("")
	ds := &models.Dataset{}
	s.SetDataset(ds, 72)

	if s.Dataset() != ds {
		t.Error("Dataset() did not return the stored dataset")
	}
	if s.Score() != 72 {
		t.Errorf("Score() = %d, want 72", s.Score())
	}
	if s.LastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}
}

func TestAppState_SetLoading(t *testing.T) {
	s := NewAppState("")

	s.SetLoading(ResourceDataset, true)
	s.SetLoading(ResourceUpload, true)
	if !s.loading[ResourceDataset] || !s.AnyLoading() {
		t.Error("dataset should be loading")
	}

	s.SetLoading(ResourceDataset, false)
	if s.loading[ResourceDataset] {
		t.Error("dataset should not be loading")
	}
	if !s.AnyLoading() {
		t.Error("upload is still loading")
	}

	s.SetLoading(ResourceUpload, false)
	if s.AnyLoading() {
		t.Error("nothing should be loading")
	}
}

func TestAppState_Notifications(t *testing.T) {
	s := NewAppState("")

	id := s.AddNotification(NotificationSuccess, "Test", time.Minute)
	if id == "" {
		t.Error("AddNotification should return an ID")
	}
	if n := s.GetNotifications(); len(n) != 1 || n[0].Message != "Test" {
		t.Fatalf("GetNotifications() = %+v", n)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}

	for range 15 {
		s.AddNotification(NotificationInfo, "x", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("kept %d notifications, want %d", got, maxNotifications)
	}
}

func TestAppState_ClearExpiredNotifications(t *testing.T) {
	s := NewAppState("")

	s.AddNotification(NotificationInfo, "expired", time.Nanosecond)
	s.AddNotification(NotificationInfo, "sticky", 0)
	time.Sleep(2 * time.Millisecond)

	if n := s.GetNotifications(); len(n) != 1 || n[0].Message != "sticky" {
		t.Errorf("GetNotifications() = %+v, want only sticky", n)
	}

	s.ClearExpiredNotifications()
	if len(s.notifications) != 1 {
		t.Errorf("stored notifications = %d, want 1", len(s.notifications))
	}
}

func TestAppState_LoadingNotification(t *testing.T) {
	s := NewAppState("")

	s.SetLoadingNotification("Loading...")
	s.SetLoadingNotification("Uploading...")

	n := s.GetNotifications()
	if len(n) != 1 {
		t.Fatalf("want a single loading notification, got %d", len(n))
	}
	if n[0].ID != LoadingNotificationID || n[0].Message != "Uploading..." || n[0].Type != NotificationLoading {
		t.Errorf("loading notification = %+v", n[0])
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
