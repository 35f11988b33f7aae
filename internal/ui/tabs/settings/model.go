// Package settings provides the tab for editing the backend URL and viewing
// the active configuration.
package settings

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/sleep-insight-tui/internal/app"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
)

// SavedIndicatorDuration is how long the "Saved" badge stays visible.
const SavedIndicatorDuration = 1500 * time.Millisecond

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	Edit    key.Binding
	Save    key.Binding
	Cancel  key.Binding
	Default key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the settings tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit URL"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Default: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "reset to default"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// savedExpiredMsg hides the "Saved" badge set by the save with the same seq.
type savedExpiredMsg struct {
	seq int
}

// Model represents the settings tab state.
type Model struct {
	state    *app.AppState
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	input    textinput.Model

	saved    bool
	savedSeq int
	errorMsg string
}

// New creates a new settings model.
func New(state *app.AppState, svc *services.Manager) *Model {
	ti := textinput.New()
	ti.Placeholder = "http://localhost:8000"
	ti.Prompt = "URL: "
	ti.CharLimit = 2048
	if svc != nil {
		ti.SetValue(svc.BackendURL())
	}

	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		input:    ti,
	}
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturesInput reports whether the URL field is being edited.
func (m *Model) CapturesInput() bool {
	return m.input.Focused()
}

// Saved reports whether the "Saved" badge is visible.
func (m *Model) Saved() bool {
	return m.saved
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case savedExpiredMsg:
		if msg.seq == m.savedSeq {
			m.saved = false
		}

	case app.ServiceEventMsg:
		if ev, ok := msg.Event.(services.SettingsChangedEvent); ok && !m.input.Focused() {
			m.input.SetValue(ev.URL)
		}

	case tea.KeyMsg:
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.errorMsg = ""
		m.input.CursorEnd()
		return m.input.Focus()

	case key.Matches(msg, m.keys.Default):
		return m.save("")

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Save):
		m.input.Blur()
		return m.save(strings.TrimSpace(m.input.Value()))

	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		if m.services != nil {
			m.input.SetValue(m.services.BackendURL())
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// save persists url. An empty url falls back to the default.
func (m *Model) save(url string) tea.Cmd {
	if m.services == nil {
		return nil
	}
	if err := m.services.SetBackendURL(url); err != nil {
		m.errorMsg = err.Error()
		return app.NotifyError(err.Error())
	}

	m.errorMsg = ""
	m.input.SetValue(m.services.BackendURL())
	m.saved = true
	m.savedSeq++
	seq := m.savedSeq
	return tea.Tick(SavedIndicatorDuration, func(time.Time) tea.Msg {
		return savedExpiredMsg{seq: seq}
	})
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.input.Width = max(min(width-16, 70), 20)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.input.Focused() {
		return []key.Binding{m.keys.Save, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Edit, m.keys.Default}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.Save, m.keys.Cancel},
		{m.keys.Default},
		{m.keys.Up, m.keys.Down},
	}
}
