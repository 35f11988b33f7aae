package settings

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
	"github.com/j-veylop/sleep-insight-tui/internal/version"
)

// helpMarkdown explains where the settings come from.
const helpMarkdown = `### Configuration

- The backend URL is saved to the settings file and picked up by every running instance.
- Leave the URL empty or press **d** to fall back to the default.
- Other values come from the environment or a ` + "`.env`" + ` file and need a restart.`

// View renders the settings tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderBackendCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
		components.RenderMarkdown(helpMarkdown, m.cardWidth()),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Settings")
	subtitle := styles.HelpStyle.Render("Backend connection and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderBackendCard() string {
	inputStyle := styles.BlurredBorderStyle
	if m.input.Focused() {
		inputStyle = styles.FocusedBorderStyle
	}

	header := styles.CardTitleStyle.Render("Backend URL")
	if m.saved {
		header += "  " + styles.SuccessTextStyle.Render("✓ Saved")
	}

	rows := []string{
		header,
		"",
		inputStyle.Width(m.cardWidth() - 8).Render(m.input.View()),
	}

	if m.services != nil {
		rows = append(rows, styles.HelpStyle.Render("Default: "+m.services.Settings().Default()))
	}
	if m.errorMsg != "" {
		rows = append(rows, styles.ErrorTextStyle.Render(m.errorMsg))
	}

	hint := "e: edit • d: reset to default"
	if m.input.Focused() {
		hint = "enter: save • esc: cancel"
	}
	rows = append(rows, "", styles.HelpStyle.Render(hint))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.services == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		cfg := m.services.Config()
		source := string(cfg.ResultsSource)
		if m.state != nil {
			source = string(m.state.Source())
		}
		rows = append(rows,
			m.renderConfigRow("Settings File", m.services.Settings().Path()),
			m.renderConfigRow("Database", cfg.DatabasePath),
			m.renderConfigRow("Log File", cfg.LogPath),
			m.renderConfigRow("Report Folder", cfg.ExportDir),
			m.renderConfigRow("Results Source", source),
			m.renderConfigRow("Request Timeout", cfg.RequestTimeout.String()),
			m.renderConfigRow("History Kept", fmt.Sprintf("%d days", cfg.HistoryRetentionDays)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Sleep Health Insight"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
