package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// showPeekMsg opens the peek overlay for a rating's author.
type showPeekMsg struct {
	userID   int64
	username string
}

type peekLoadedMsg struct {
	gen     int
	ratings []domain.Rating
	err     error
}

// peekModel shows another user's ratings in an overlay card.
type peekModel struct {
	api      API
	scope    scope
	username string
	ratings  []domain.Rating
	loaded   bool
	cursor   int
	closed   bool
	err      string
	width    int
}

func newPeekModel(api API) peekModel {
	return peekModel{api: api}
}

func (m peekModel) load(userID int64, username string) (peekModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.username = username
	api, ctx, gen := m.api, m.scope.context(), m.scope.gen
	return m, func() tea.Msg {
		rs, err := api.ListUserRatings(ctx, userID)
		if err != nil {
			return peekLoadedMsg{gen: gen, err: fmt.Errorf("client.ListUserRatings: %w", err)}
		}
		return peekLoadedMsg{gen: gen, ratings: rs}
	}
}

func (m peekModel) Update(msg tea.Msg) (peekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case peekLoadedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			m.err = client.Message(msg.err)
		} else {
			m.ratings = msg.ratings
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.scope.close()
			m.closed = true
		case "j", "down":
			if m.cursor < len(m.ratings)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if m.cursor < len(m.ratings) {
				id := m.ratings[m.cursor].Movie
				m.scope.close()
				m.closed = true
				return m, func() tea.Msg { return navigateMsg{to: viewDetail, movieID: id} }
			}
		}
	}
	return m, nil
}

func (m peekModel) average() float64 {
	if len(m.ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range m.ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(m.ratings))
}

func (m peekModel) View() string {
	if m.err != "" {
		return "\n " + dimStyle.Render("peek error: "+m.err)
	}
	if !m.loaded {
		return "\n " + dimStyle.Render("loading...")
	}

	cardWidth := min(60, m.width-4)
	if cardWidth < 36 {
		cardWidth = 36
	}
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(cardWidth)

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(m.username) + "\n")

	sb.WriteString(metaStyle.Render("---") + "\n")
	stats := fmt.Sprintf("%d ratings", len(m.ratings))
	if len(m.ratings) > 0 {
		stats += fmt.Sprintf("  %.1f average", m.average())
	}
	sb.WriteString(metaStyle.Render(stats) + "\n")
	sb.WriteString(metaStyle.Render("---") + "\n")

	if len(m.ratings) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── RATED ──") + "\n")
		for i, r := range m.ratings {
			cursor := " "
			title := normalStyle.Render(truncStr(r.MovieTitle, cardWidth-18))
			if i == m.cursor {
				cursor = accentStyle.Render("▸")
				title = selectedStyle.Render(truncStr(r.MovieTitle, cardWidth-18))
			}
			sb.WriteString(cursor + " " + newStars(r.Rating).View() + " " + title + "\n")
		}
	}

	sb.WriteString("\n" + helpEntry("enter", "open") + "  " + helpEntry("esc", "close"))
	return "\n" + border.Render(sb.String())
}
