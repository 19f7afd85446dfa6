package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shubh-37/idea-processor/internal/models"
	"github.com/shubh-37/idea-processor/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5C542"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)
)

var phaseNames = map[models.Phase]string{
	models.PhaseMenu:     "Menu",
	models.PhaseSetup:    "Voorbereiding",
	models.PhaseLive:     "Live",
	models.PhaseClosing:  "Afronden",
	models.PhaseAnalysis: "Analyse",
	models.PhaseDetail:   "Uitwerking",
}

func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	inner := max(20, width-4)

	header := titleStyle.Render("💡 EXACT IDEA PROCESSOR")
	body := boxStyle.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderPhaseLine(),
		"",
		m.renderBody(inner-4),
	))

	sections := []string{header, body}
	if m.state.StoreError != "" {
		sections = append(sections, errorStyle.Render("⚠️ "+m.state.StoreError))
	}
	if m.busy != "" {
		sections = append(sections, fmt.Sprintf("%s %s…", m.spinner.View(), m.busy))
	} else if m.status != "" {
		sections = append(sections, mutedStyle.Render(m.status))
	}
	sections = append(sections, m.help.ShortHelpView(m.keys.forPhase(m.state.Phase)))
	return strings.Join(sections, "\n")
}

func (m *Model) renderPhaseLine() string {
	name, ok := phaseNames[m.state.Phase]
	if !ok {
		name = string(m.state.Phase)
	}
	line := fmt.Sprintf("Sessie %s · %s · %d idee(ën)", m.state.SessionID, headStyle.Render(name), len(m.state.Ideas))
	if m.state.RemoteActive {
		line += " · 🟢 open voor inzendingen"
	}
	return line
}

func (m *Model) renderBody(width int) string {
	st := m.state
	switch st.Phase {
	case models.PhaseMenu:
		return "Druk op n om een nieuwe sessie voor te bereiden."
	case models.PhaseSetup:
		return lipgloss.JoinVertical(lipgloss.Left,
			headStyle.Render("Vraag voor de zaal"),
			m.input.View(),
		)
	case models.PhaseLive:
		return m.renderLive(width)
	case models.PhaseClosing:
		return scoreStyle.Render(fmt.Sprintf("⏳ Inzendingen sluiten over %d…", st.Countdown))
	case models.PhaseAnalysis:
		return m.renderAnalysis(width)
	case models.PhaseDetail:
		return m.renderDetail(width)
	}
	return ""
}

func (m *Model) renderLive(width int) string {
	st := m.state
	lines := []string{
		headStyle.Render(st.Context),
		mutedStyle.Render(fmt.Sprintf("Looptijd %s", formatDuration(st.DurationSeconds))),
		"",
	}
	ideas := st.Ideas
	if len(ideas) > 10 {
		ideas = ideas[len(ideas)-10:]
	}
	for _, idea := range ideas {
		lines = append(lines, truncate(fmt.Sprintf("• %s: %s", idea.Name, idea.Content), width))
	}
	if len(st.Ideas) == 0 {
		lines = append(lines, mutedStyle.Render("Nog geen ideeën binnen."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderAnalysis(width int) string {
	st := m.state
	task := st.AnalysisTask
	switch {
	case task.Status == session.StatusGenerating:
		return fmt.Sprintf("%s Ideeën worden geanalyseerd… %d%%", m.spinner.View(), task.Progress)
	case task.Status == session.StatusFailed:
		return errorStyle.Render("Analyse mislukt: "+task.Error) + "\n" + mutedStyle.Render("Druk op r om het opnieuw te proberen.")
	case st.Analysis == nil:
		return mutedStyle.Render("Geen analyse beschikbaar.")
	}
	a := st.Analysis
	lines := []string{
		headStyle.Render(a.Headline),
		truncate(a.Summary, width*3),
		scoreStyle.Render(fmt.Sprintf("Innovatiescore %d/100", st.AnimatedScore)),
	}
	if len(a.Keywords) > 0 {
		lines = append(lines, mutedStyle.Render(strings.Join(a.Keywords, " · ")))
	}
	lines = append(lines, "", m.ideas.View())
	return strings.Join(lines, "\n")
}

func (m *Model) renderDetail(width int) string {
	st := m.state
	if st.SelectedIdea == nil {
		return ""
	}
	lines := []string{headStyle.Render(st.SelectedIdea.Name), truncate(st.SelectedIdea.Content, width*2), "", renderTabs(st.Tab), ""}

	if st.DetailTask.Status == session.StatusGenerating {
		lines = append(lines, fmt.Sprintf("%s Uitwerking wordt gemaakt… %d%%", m.spinner.View(), st.DetailTask.Progress))
		return strings.Join(lines, "\n")
	}
	if st.DetailTask.Status == session.StatusFailed {
		lines = append(lines, errorStyle.Render("Uitwerking mislukt: "+st.DetailTask.Error))
		return strings.Join(lines, "\n")
	}
	if st.Details == nil {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, m.renderTab(st.Details, width)...)
	return strings.Join(lines, "\n")
}

func renderTabs(active models.DetailTab) string {
	parts := make([]string, len(tabOrder))
	for i, t := range tabOrder {
		if t == active {
			parts[i] = activeTabStyle.Render(string(t))
		} else {
			parts[i] = tabStyle.Render(string(t))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderTab(d *models.IdeaDetails, width int) []string {
	switch m.state.Tab {
	case models.TabBusiness:
		bc := d.BusinessCase
		return []string{
			"Probleem: " + truncate(bc.ProblemStatement, width*2),
			"Oplossing: " + truncate(bc.ProposedSolution, width*2),
			"Strategie: " + truncate(bc.StrategicFit, width),
			"Impact: " + truncate(bc.FinancialImpact, width),
		}
	case models.TabBacklog:
		lines := make([]string, 0, len(d.PBIs))
		for _, pbi := range d.PBIs {
			lines = append(lines, truncate(fmt.Sprintf("%s [%s, %d pt] %s", pbi.ID, pbi.Priority, pbi.StoryPoints, pbi.Title), width))
		}
		return lines
	case models.TabMarketing:
		mk := d.Marketing
		return []string{
			scoreStyle.Render(mk.Slogan),
			"Doelgroep: " + truncate(mk.TargetAudience, width),
			"Tweet: " + truncate(mk.ViralTweet, width*2),
		}
	case models.TabContent:
		return []string{
			m.contentLine("Blog", m.state.BlogTask, d.Blog != nil),
			m.contentLine("Persbericht", m.state.PressTask, d.PressRelease != nil),
			m.contentLine("Slides", m.state.SlidesTask, d.SlideOutline != nil),
		}
	}
	lines := []string{truncate(d.Rationale, width*3), ""}
	for i, step := range d.Steps {
		lines = append(lines, truncate(fmt.Sprintf("%d. %s", i+1, step), width))
	}
	return lines
}

func (m *Model) contentLine(label string, task session.Task, ready bool) string {
	switch {
	case task.Status == session.StatusGenerating:
		return fmt.Sprintf("%s %s %d%%", m.spinner.View(), label, task.Progress)
	case task.Status == session.StatusFailed:
		return errorStyle.Render(fmt.Sprintf("✗ %s: %s", label, task.Error))
	case ready:
		return "✓ " + label
	}
	return mutedStyle.Render("· " + label)
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
