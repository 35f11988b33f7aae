// Package upload provides the tab for sending a health export to the backend.
package upload

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
	"github.com/j-veylop/sleep-insight-tui/internal/app"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
	flow "github.com/j-veylop/sleep-insight-tui/internal/upload"
)

// Tips are shown below the form.
var Tips = []string{
	"Large exports may take time; backend should stream parse.",
	"Only essential metrics are stored (e.g., heart rate, sleep).",
	"If upload fails, verify backend URL in Settings.",
}

type keyMap struct {
	Edit   key.Binding
	Browse key.Binding
	Submit key.Binding
	Clear  key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "/"),
			key.WithHelp("e", "edit path"),
		),
		Browse: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "browse files"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "u"),
			key.WithHelp("enter", "upload"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// uploadFinishedMsg carries the outcome of the request started by Submit.
type uploadFinishedMsg struct {
	result api.UploadResult
	err    error
}

// Model represents the upload tab state.
type Model struct {
	state    *app.AppState
	services *services.Manager
	keys     keyMap
	width    int
	height   int

	input    textinput.Model
	picker   filepicker.Model
	browsing bool
	spinner  components.LoadingSpinner

	machine   *flow.Machine
	completed *api.UploadResult
	inlineErr string
}

// New creates a new upload model.
func New(state *app.AppState, svc *services.Manager) *Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/export.zip"
	ti.Prompt = "File: "
	ti.CharLimit = 4096

	fp := filepicker.New()
	fp.AllowedTypes = flow.Extensions
	fp.ShowSize = true
	fp.AutoHeight = true
	fp.CurrentDirectory = startDir()

	m := &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		input:    ti,
		picker:   fp,
		spinner:  components.NewSpinner("Uploading..."),
	}
	m.machine = flow.New(func(result api.UploadResult) {
		m.completed = &result
	})
	return m
}

func startDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// Init initializes the upload tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturesInput reports whether keys belong to the path input or browser.
func (m *Model) CapturesInput() bool {
	return m.input.Focused() || m.browsing
}

// Machine exposes the upload state machine.
func (m *Model) Machine() *flow.Machine {
	return m.machine
}

// Update handles messages for the upload tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadFinishedMsg:
		return m, m.handleFinished(msg)

	case tea.WindowSizeMsg:
		// sized through SetSize
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.browsing:
			return m, m.updateBrowser(msg)
		case m.input.Focused():
			return m, m.updateInput(msg)
		default:
			return m, m.handleKeyMsg(msg)
		}
	}

	var cmds []tea.Cmd
	if m.machine.Status() == flow.StatusUploading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.browsing {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Edit):
		if m.machine.Status() == flow.StatusUploading {
			return nil
		}
		return m.input.Focus()

	case key.Matches(msg, m.keys.Browse):
		if m.machine.Status() == flow.StatusUploading {
			return nil
		}
		m.browsing = true
		m.inlineErr = ""
		return m.picker.Init()

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		if m.machine.Clear() {
			m.input.SetValue("")
			m.inlineErr = ""
		}
	}
	return nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.input.Blur()
		m.stage(strings.TrimSpace(m.input.Value()))
		return nil
	case tea.KeyEsc:
		m.input.Blur()
		if f, ok := m.machine.File(); ok {
			m.input.SetValue(f.Path)
		} else {
			m.input.SetValue("")
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateBrowser(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Cancel) {
		m.browsing = false
		return nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.browsing = false
		m.input.SetValue(path)
		m.stage(path)
	} else if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.inlineErr = fmt.Sprintf("%s is not a .zip or .xml export", path)
	}
	return cmd
}

// stage validates path and hands it to the state machine. An empty or
// rejected path unstages the previous file so submit never sends a file the
// input no longer shows.
func (m *Model) stage(path string) {
	if path == "" {
		m.inlineErr = ""
		m.machine.Unstage()
		return
	}
	f, err := flow.Inspect(path)
	if err != nil {
		m.inlineErr = err.Error()
		m.machine.Unstage()
		return
	}
	m.inlineErr = ""
	m.machine.Stage(f)
}

func (m *Model) submit() tea.Cmd {
	if m.services == nil {
		return nil
	}
	f, ok := m.machine.Submit()
	if !ok {
		return nil
	}
	m.completed = nil
	m.spinner.SetLabel(fmt.Sprintf("Uploading %s (%s)...", f.Name, f.SizeString()))

	svc := m.services
	upload := func() tea.Msg {
		result, err := svc.Upload(context.Background(), f.Path)
		return uploadFinishedMsg{result: result, err: err}
	}

	return tea.Batch(
		app.StartLoading(app.ResourceUpload, fmt.Sprintf("Uploading %s...", f.Name)),
		m.spinner.Tick(),
		upload,
	)
}

func (m *Model) handleFinished(msg uploadFinishedMsg) tea.Cmd {
	m.machine.Finish(msg.result, msg.err)

	cmds := []tea.Cmd{app.StopLoading(app.ResourceUpload)}
	if msg.err != nil {
		cmds = append(cmds, app.NotifyError(m.machine.Message()))
		return tea.Batch(cmds...)
	}

	cmds = append(cmds, app.NotifySuccess(m.machine.Message()))
	if m.completed != nil {
		done := app.UploadCompletedMsg{Result: *m.completed}
		if f, ok := m.machine.File(); ok {
			done.FileName = f.Name
		}
		m.completed = nil
		cmds = append(cmds, func() tea.Msg { return done })
	}
	return tea.Batch(cmds...)
}

// SetSize sets the available size for the upload tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-16, 20)
	m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: width, Height: max(height-6, 5)})
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Edit, m.keys.Browse, m.keys.Submit, m.keys.Clear}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.Browse},
		{m.keys.Submit, m.keys.Clear, m.keys.Cancel},
	}
}
