package upload

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
	flow "github.com/j-veylop/sleep-insight-tui/internal/upload"
)

// View renders the upload tab.
func (m *Model) View() string {
	if m.browsing {
		return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("Select an export"),
			m.picker.View(),
			m.renderInlineError(),
			styles.HelpStyle.Render("enter: select • h/backspace: up a directory • esc: cancel"),
		))
	}

	sections := []string{
		m.renderTitle(),
		m.renderForm(),
		m.renderStatus(),
		m.renderTips(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return styles.DocStyle.Width(m.width).Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Upload Health Export")

	target := "backend"
	if m.services != nil {
		target = m.services.BackendURL()
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Send a .zip or .xml export to %s", target))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 40), 90)
}

func (m *Model) renderForm() string {
	inputStyle := styles.BlurredBorderStyle
	if m.input.Focused() {
		inputStyle = styles.FocusedBorderStyle
	}

	rows := []string{
		styles.CardTitleStyle.Render("Export file"),
		inputStyle.Width(m.cardWidth() - 8).Render(m.input.View()),
	}

	if f, ok := m.machine.File(); ok {
		rows = append(rows, "",
			renderRow("Selected", f.Name),
			renderRow("Size", f.SizeString()),
		)
	} else {
		rows = append(rows, "", styles.HelpStyle.Render("No file selected"))
	}

	if line := m.renderInlineError(); line != "" {
		rows = append(rows, "", line)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderInlineError() string {
	if m.inlineErr == "" {
		return ""
	}
	return styles.ErrorTextStyle.Render(m.inlineErr)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(10).
		Foreground(styles.TextMuted)

	return labelStyle.Render(label+":") + " " + lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(value)
}

func (m *Model) renderStatus() string {
	var line string
	switch m.machine.Status() {
	case flow.StatusUploading:
		line = m.spinner.ViewWithLabel()
	case flow.StatusSuccess:
		line = styles.SuccessTextStyle.Render("✓ "+m.machine.Message()) + "  " +
			styles.HelpStyle.Render("c: upload another")
	case flow.StatusError:
		line = styles.ErrorTextStyle.Render("✗ "+m.machine.Message()) + "  " +
			styles.HelpStyle.Render("enter: retry • c: clear")
	default:
		line = m.renderHints()
	}

	source := "the bundled sample data"
	if m.state != nil && m.state.Source() == config.SourceBackend {
		source = "backend data"
	}
	note := styles.HelpStyle.Render(fmt.Sprintf("Results currently show %s (press s on the Results tab to switch).", source))

	return lipgloss.JoinVertical(lipgloss.Left, line, note, "")
}

func (m *Model) renderHints() string {
	var hints []string
	for _, b := range m.ShortHelp() {
		hints = append(hints, styles.HelpKeyStyle.Render(b.Help().Key)+" "+styles.HelpDescStyle.Render(b.Help().Desc))
	}
	return strings.Join(hints, styles.HelpSeparatorStyle.Render(" • "))
}

func (m *Model) renderTips() string {
	var md strings.Builder
	md.WriteString("### Tips\n\n")
	for _, tip := range Tips {
		md.WriteString("- " + tip + "\n")
	}
	return components.RenderMarkdown(md.String(), m.cardWidth())
}
