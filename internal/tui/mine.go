package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

type myRatingsLoadedMsg struct {
	gen     int
	ratings []domain.Rating
	err     error
}

type myRatingDeletedMsg struct {
	gen   int
	title string
	err   error
}

// mineModel lists the signed-in user's ratings.
type mineModel struct {
	api     API
	scope   scope
	ratings []domain.Rating
	cursor  int
	loading bool
	err     string
	status  string
	width   int
	height  int
}

func newMineModel(api API) mineModel {
	return mineModel{api: api}
}

func (m mineModel) Init() (mineModel, tea.Cmd) {
	m.status = ""
	return m.reload()
}

// reload starts a new generation so an older list can never overwrite a
// newer one.
func (m mineModel) reload() (mineModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.loading = true
	m.err = ""
	return m, m.load()
}

func (m mineModel) load() tea.Cmd {
	api, ctx, gen := m.api, m.scope.context(), m.scope.gen
	return func() tea.Msg {
		rs, err := api.ListMyRatings(ctx)
		return myRatingsLoadedMsg{gen: gen, ratings: rs, err: err}
	}
}

func (m mineModel) Update(msg tea.Msg) (mineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case myRatingsLoadedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.ratings = msg.ratings
		if m.cursor >= len(m.ratings) {
			m.cursor = max(0, len(m.ratings)-1)
		}

	case myRatingDeletedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.status = "error: " + client.Message(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted your rating of %s.", msg.title)
		return m.reload()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m mineModel) handleKey(msg tea.KeyMsg) (mineModel, tea.Cmd) {
	switch msg.String() {
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
			return m, func() tea.Msg { return navigateMsg{to: viewDetail, movieID: id} }
		}
	case "d":
		if m.cursor < len(m.ratings) {
			r := m.ratings[m.cursor]
			api, ctx, gen := m.api, m.scope.context(), m.scope.gen
			return m, func() tea.Msg {
				return myRatingDeletedMsg{gen: gen, title: r.MovieTitle, err: api.DeleteRating(ctx, r.ID)}
			}
		}
	case "r":
		return m.reload()
	}
	return m, nil
}

func (m mineModel) View() string {
	var b strings.Builder

	if m.loading && m.ratings == nil {
		return " " + dimStyle.Render("loading...") + "\n"
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		b.WriteString(" " + helpEntry("r", "retry") + "\n")
		return b.String()
	}
	if len(m.ratings) == 0 {
		b.WriteString("\n " + dimStyle.Render("You haven't rated any movies yet.") + "\n")
		return b.String()
	}

	for i, r := range m.ratings {
		cursor := " "
		title := normalStyle.Render(truncStr(r.MovieTitle, 40))
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			title = selectedStyle.Render(truncStr(r.MovieTitle, 40))
		}
		fmt.Fprintf(&b, " %s %s  %s  %s\n", cursor, newStars(r.Rating).View(), title, metaStyle.Render(formatTime(r.CreatedAt)))
		if r.Review != "" {
			b.WriteString("     " + reviewStyle.Render(truncStr(oneLine(r.Review), max(30, m.width-8))) + "\n")
		}
	}

	if m.status != "" {
		style := successStyle
		if strings.HasPrefix(m.status, "error:") {
			style = errorStyle
		}
		b.WriteString("\n " + style.Render(m.status) + "\n")
	}
	return b.String()
}

func (m mineModel) helpKeys() string {
	return helpBar("j/k", "nav", "enter", "open", "d", "delete", "r", "reload", "h", "help", "q", "quit")
}
