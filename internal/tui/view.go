package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"typerace/internal/domain"
)

const barWidth = 30

// Color Guide
// 15   White
// 12   Blue
// 10   Green
// 9    Red
// 8    Gray
// 3    Yellow
var (
	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Underline(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	layoutStyle = lipgloss.NewStyle().
			Margin(1, 2).
			Width(72)

	titleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("3")).
			Padding(0, 1).
			Foreground(lipgloss.Color("3")).
			SetString("Type Race")

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// View renders the race
func (m Model) View() string {
	if m.err != nil {
		return layoutStyle.Render(fmt.Sprintf("Disconnected: %v\n", m.err))
	}

	sections := []string{
		titleStyle.Render(),
		statusStyle.Render(m.status()),
		m.renderText(),
		m.renderRoster(),
	}
	if len(m.leaderboard) > 0 {
		sections = append(sections, m.renderLeaderboard())
	}
	if m.notice != "" {
		sections = append(sections, wrongStyle.Render(m.notice))
	}
	sections = append(sections, helpStyle.Render("ctrl+s start · ctrl+r play again · ctrl+l leaderboard · ctrl+c quit"))

	return layoutStyle.Render(strings.Join(sections, "\n\n"))
}

func (m Model) status() string {
	switch m.phase {
	case domain.PhaseCountingDown:
		return fmt.Sprintf("Starting in %d...", m.countdown)
	case domain.PhaseRunning:
		return "Go!"
	case domain.PhaseFinished:
		return winnerStyle.Render(fmt.Sprintf("%s wins!", m.winner))
	default:
		return fmt.Sprintf("Waiting for players (%d joined)", len(m.participants))
	}
}

// renderText colors the race text by what has been typed so far
func (m Model) renderText() string {
	target := []rune(m.raceText)
	var b strings.Builder

	for i, r := range target {
		ch := string(r)
		switch {
		case i < len(m.typed) && m.typed[i] == r:
			b.WriteString(correctStyle.Render(ch))
		case i < len(m.typed):
			b.WriteString(wrongStyle.Render(ch))
		case i == len(m.typed) && m.phase == domain.PhaseRunning:
			b.WriteString(cursorStyle.Render(ch))
		default:
			b.WriteString(normalStyle.Render(ch))
		}
	}

	// Extra characters past the end of the text
	for i := len(target); i < len(m.typed); i++ {
		b.WriteString(wrongStyle.Render(string(m.typed[i])))
	}

	return b.String()
}

func (m Model) renderRoster() string {
	var b strings.Builder
	for _, p := range m.participants {
		name := p.Name
		if p.ID == m.connectionID {
			name += " (you)"
		}
		fmt.Fprintf(&b, "%-20s %s %3d%%\n", name, progressBar(p.Progress), p.Progress)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderLeaderboard() string {
	var b strings.Builder
	b.WriteString("Leaderboard\n")
	for i, entry := range m.leaderboard {
		fmt.Fprintf(&b, "%2d. %s - %d pts\n", i+1, entry.Name, entry.Points)
	}
	return strings.TrimRight(b.String(), "\n")
}

func progressBar(progress int) string {
	filled := domain.ClampProgress(progress) * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
