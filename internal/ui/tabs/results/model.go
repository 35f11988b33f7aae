// Package results provides the tab showing the sleep summary, charts and
// the paginated records table.
package results

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
	"github.com/j-veylop/sleep-insight-tui/internal/app"
	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/logger"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/report"
	resultsview "github.com/j-veylop/sleep-insight-tui/internal/results"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
)

type keyMap struct {
	Category key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	PageSize key.Binding
	Source   key.Binding
	Refresh  key.Binding
	Export   key.Binding
	RowUp    key.Binding
	RowDown  key.Binding
	Scroll   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next category")),
		NextPage: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		PageSize: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
		Source:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "mock/backend")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export report")),
		RowUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "row up")),
		RowDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "row down")),
		Scroll:   key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
	}
}

// datasetLoadedMsg carries the result of a dataset load. seq ties it to the
// load that produced it.
type datasetLoadedMsg struct {
	dataset *models.Dataset
	err     error
	source  config.Source
	score   int
	seq     int
}

// pageLoadedMsg carries one fetched records page.
type pageLoadedMsg struct {
	page *models.MetricPage
	err  error
	req  resultsview.Request
}

// Model represents the results tab state.
type Model struct {
	state    *app.AppState
	services *services.Manager
	keys     keyMap
	width    int
	height   int

	view     *resultsview.View
	dataset  *models.Dataset
	scoreBar components.ScoreBar
	table    table.Model
	viewport viewport.Model
	spinner  components.LoadingSpinner

	loadSeq     int
	loading     bool
	pageLoading bool
	err         string
	pageErr     string
	lastLoaded  time.Time
}

// New creates a new results model.
func New(state *app.AppState, svc *services.Manager) *Model {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
	}

	tkm := table.DefaultKeyMap()
	tkm.PageUp = key.NewBinding(key.WithDisabled())
	tkm.PageDown = key.NewBinding(key.WithDisabled())
	tkm.HalfPageUp = key.NewBinding(key.WithDisabled())
	tkm.HalfPageDown = key.NewBinding(key.WithDisabled())

	t := table.New(table.WithFocused(true), table.WithHeight(10), table.WithKeyMap(tkm))
	t.SetStyles(tableStyles())

	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		view:     resultsview.New(nil),
		scoreBar: components.NewScoreBar(40),
		table:    t,
		viewport: vp,
		spinner:  components.NewSpinner("Loading results..."),
	}
}

// Init loads the dataset for the current source.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Records exposes the records table state.
func (m *Model) Records() *resultsview.View {
	return m.view
}

func (m *Model) source() config.Source {
	if m.state == nil {
		return config.SourceMock
	}
	return m.state.Source()
}

// load starts loading the dataset from the current source.
func (m *Model) load() tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.loadSeq++
	m.loading = true
	m.err = ""

	seq := m.loadSeq
	source := m.source()
	svc := m.services
	load := func() tea.Msg {
		ctx := context.Background()
		ds, err := svc.LoadDataset(ctx, source)
		if err != nil {
			return datasetLoadedMsg{err: err, source: source, seq: seq}
		}
		snap, err := svc.RecordScore(ctx, ds, source)
		if err != nil {
			logger.Warn("failed to record score", "error", err)
			snap.Score = sleep.Score(ds.Summary.Stats, ds.Summary.Trend)
		}
		return datasetLoadedMsg{dataset: ds, source: source, score: snap.Score, seq: seq}
	}

	return tea.Batch(
		app.StartLoading(app.ResourceDataset, "Loading results..."),
		m.spinner.Tick(),
		load,
	)
}

// fetchPage requests the current page from the backend.
func (m *Model) fetchPage() tea.Cmd {
	if m.view.Local() || m.services == nil {
		return nil
	}
	req := m.view.Begin()
	m.pageLoading = true
	m.pageErr = ""

	svc := m.services
	return func() tea.Msg {
		page, err := svc.FetchMetrics(context.Background(), req.Category, req.Page, req.PageSize)
		return pageLoadedMsg{page: page, err: err, req: req}
	}
}

// Update handles messages for the results tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case datasetLoadedMsg:
		cmds = append(cmds, m.handleDatasetLoaded(msg))

	case pageLoadedMsg:
		m.handlePageLoaded(msg)

	case app.UploadCompletedMsg:
		if m.source() == config.SourceBackend {
			cmds = append(cmds, m.load())
		}

	case app.ServiceEventMsg:
		if _, ok := msg.Event.(services.SettingsChangedEvent); ok && m.source() == config.SourceBackend {
			cmds = append(cmds, m.load())
		}

	case app.ExportResultMsg:
		cmds = append(cmds, m.handleExportResult(msg))

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.scoreBar, cmd = m.scoreBar.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	default:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleDatasetLoaded(msg datasetLoadedMsg) tea.Cmd {
	if msg.seq != m.loadSeq {
		return nil
	}
	m.loading = false
	cmds := []tea.Cmd{app.StopLoading(app.ResourceDataset)}

	if msg.err != nil {
		m.err = api.Message(msg.err)
		m.dataset = nil
		m.view.SetSource(nil)
		m.refreshTable()
		logger.Error("failed to load results", "source", msg.source, "error", msg.err)
		return tea.Batch(append(cmds, app.NotifyError(m.err))...)
	}

	m.err = ""
	m.dataset = msg.dataset
	m.lastLoaded = time.Now()
	if m.state != nil {
		m.state.SetDataset(msg.dataset, msg.score)
	}
	cmds = append(cmds, m.scoreBar.SetScore(msg.score))

	if msg.source == config.SourceBackend {
		m.view.SetSource(nil)
		cmds = append(cmds, m.fetchPage())
	} else {
		m.view.SetSource(msg.dataset)
	}
	m.refreshTable()
	return tea.Batch(cmds...)
}

func (m *Model) handlePageLoaded(msg pageLoadedMsg) {
	if !m.view.Current(msg.req) {
		return
	}
	m.pageLoading = false
	if msg.err != nil {
		m.pageErr = api.Message(msg.err)
		m.view.Accept(msg.req, nil)
	} else {
		m.pageErr = ""
		m.view.Accept(msg.req, msg.page)
	}
	m.refreshTable()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Category):
		m.view.OnCategoryChanged(m.view.Category().Next())
		return m.afterPaging()

	case key.Matches(msg, m.keys.NextPage):
		m.view.NextPage()
		return m.afterPaging()

	case key.Matches(msg, m.keys.PrevPage):
		m.view.PrevPage()
		return m.afterPaging()

	case key.Matches(msg, m.keys.PageSize):
		m.view.CyclePageSize()
		return m.afterPaging()

	case key.Matches(msg, m.keys.Source):
		if m.state == nil {
			return nil
		}
		source := m.state.ToggleSource()
		return tea.Batch(m.load(), app.NotifyInfo("Results source: "+string(source)))

	case key.Matches(msg, m.keys.Refresh):
		return m.load()

	case key.Matches(msg, m.keys.Export):
		return m.export()

	case key.Matches(msg, m.keys.RowUp), key.Matches(msg, m.keys.RowDown):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// afterPaging refreshes the table, fetching the page in backend mode.
func (m *Model) afterPaging() tea.Cmd {
	cmd := m.fetchPage()
	m.refreshTable()
	return cmd
}

func (m *Model) export() tea.Cmd {
	if m.dataset == nil || m.services == nil {
		return app.NotifyWarning("Nothing to export yet")
	}
	ds := m.dataset
	cfg := m.services.Config()
	return tea.Batch(
		app.StartLoading(app.ResourceExport, "Exporting report..."),
		func() tea.Msg {
			path, err := report.Export(cfg.ExportDir, ds, time.Now())
			if err != nil {
				return app.ExportResultMsg{Error: err}
			}
			res := app.ExportResultMsg{Path: path}
			if cfg.OpenReport {
				if err := report.Open(path); err != nil {
					logger.Warn("failed to open report", "path", path, "error", err)
				} else {
					res.Opened = true
				}
			}
			return res
		},
	)
}

func (m *Model) handleExportResult(msg app.ExportResultMsg) tea.Cmd {
	stop := app.StopLoading(app.ResourceExport)
	if msg.Error != nil {
		return tea.Batch(stop, app.NotifyError("Export failed: "+msg.Error.Error()))
	}
	return tea.Batch(stop, app.NotifySuccess("Report saved to "+msg.Path))
}

// SetSize sets the available size for the results tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refreshTable()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Category, m.keys.NextPage, m.keys.PrevPage, m.keys.PageSize,
		m.keys.Source, m.keys.Refresh, m.keys.Export,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Category, m.keys.PageSize},
		{m.keys.NextPage, m.keys.PrevPage},
		{m.keys.RowUp, m.keys.RowDown, m.keys.Scroll},
		{m.keys.Source, m.keys.Refresh, m.keys.Export},
	}
}
