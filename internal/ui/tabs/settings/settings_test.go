package settings

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/sleep-insight-tui/internal/app"
	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
)

const defaultURL = "http://localhost:8000"

func newTestManager(t *testing.T) *services.Manager {
	t.Helper()
	tmpDir := t.TempDir()
	mgr, err := services.NewManager(&config.Config{
		BackendURL:    defaultURL,
		SettingsPath:  filepath.Join(tmpDir, "settings.json"),
		DatabasePath:  filepath.Join(tmpDir, "history.db"),
		ResultsSource: config.SourceMock,
	})
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	mgr := newTestManager(t)
	m := New(app.NewAppState(""), mgr)
	if m.input.Value() != defaultURL {
		t.Errorf("input = %q, want %q", m.input.Value(), defaultURL)
	}
	if m.Init() != nil {
		t.Error("Init should not start any work")
	}
	if m.CapturesInput() {
		t.Error("input should not be focused initially")
	}
}

func TestModel_SaveURL(t *testing.T) {
	mgr := newTestManager(t)
	m := New(app.NewAppState(""), mgr)

	m.Update(runes("e"))
	if !m.CapturesInput() {
		t.Fatal("e should focus the URL input")
	}
	m.input.SetValue("  http://example.test:9000  ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("save should schedule hiding the badge")
	}
	if m.CapturesInput() {
		t.Error("enter should release the input")
	}
	if got := mgr.BackendURL(); got != "http://example.test:9000" {
		t.Errorf("BackendURL = %q", got)
	}
	if !m.Saved() {
		t.Error("Saved badge should be visible")
	}

	m.SetSize(100, 60)
	if !strings.Contains(ansi.Strip(m.View()), "Saved") {
		t.Error("Saved badge should be rendered")
	}

	m.Update(savedExpiredMsg{seq: m.savedSeq - 1})
	if !m.Saved() {
		t.Error("an older timer must not hide the badge")
	}
	m.Update(savedExpiredMsg{seq: m.savedSeq})
	if m.Saved() {
		t.Error("Saved badge should be hidden")
	}
}

func TestModel_EmptyURLUsesDefault(t *testing.T) {
	mgr := newTestManager(t)
	if err := mgr.SetBackendURL("http://other:1"); err != nil {
		t.Fatalf("SetBackendURL failed: %v", err)
	}
	m := New(app.NewAppState(""), mgr)

	m.Update(runes("e"))
	m.input.SetValue("   ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if got := mgr.BackendURL(); got != defaultURL {
		t.Errorf("BackendURL = %q, want default", got)
	}
	if m.input.Value() != defaultURL {
		t.Errorf("input = %q, want default", m.input.Value())
	}
}

func TestModel_ResetToDefault(t *testing.T) {
	mgr := newTestManager(t)
	if err := mgr.SetBackendURL("http://other:1"); err != nil {
		t.Fatalf("SetBackendURL failed: %v", err)
	}
	m := New(app.NewAppState(""), mgr)

	m.Update(runes("d"))
	if got := mgr.BackendURL(); got != defaultURL {
		t.Errorf("BackendURL = %q, want default", got)
	}
}

func TestModel_CancelEdit(t *testing.T) {
	mgr := newTestManager(t)
	m := New(app.NewAppState(""), mgr)

	m.Update(runes("e"))
	m.Update(runes("q1"))
	if !m.CapturesInput() {
		t.Fatal("typing should keep the input focused")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.CapturesInput() {
		t.Error("esc should blur the input")
	}
	if m.input.Value() != defaultURL {
		t.Errorf("input = %q, want the saved URL", m.input.Value())
	}
	if mgr.BackendURL() != defaultURL {
		t.Error("cancel must not save")
	}
}

func TestModel_SettingsChangedEvent(t *testing.T) {
	m := New(app.NewAppState(""), nil)

	m.Update(app.ServiceEventMsg{Event: services.SettingsChangedEvent{URL: "http://elsewhere"}})
	if m.input.Value() != "http://elsewhere" {
		t.Errorf("input = %q", m.input.Value())
	}

	m.Update(runes("e"))
	m.input.SetValue("typing")
	m.Update(app.ServiceEventMsg{Event: services.SettingsChangedEvent{URL: "http://again"}})
	if m.input.Value() != "typing" {
		t.Error("an external change must not overwrite an edit in progress")
	}
}

func TestModel_View(t *testing.T) {
	mgr := newTestManager(t)
	m := New(app.NewAppState(config.SourceBackend), mgr)
	m.SetSize(100, 80)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Settings", "Backend URL", "Default: " + defaultURL, "Configuration", "backend", "About Sleep Health Insight"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewWithoutServices(t *testing.T) {
	m := New(app.NewAppState(""), nil)
	m.SetSize(80, 60)
	if !strings.Contains(ansi.Strip(m.View()), "Configuration not loaded") {
		t.Error("missing configuration should be reported")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewAppState(""), nil)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help should not be empty")
	}
}
