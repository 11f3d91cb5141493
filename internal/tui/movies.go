package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// -- messages --

type moviesLoadedMsg struct {
	gen  int
	page *domain.Page[domain.Movie]
	err  error
}

type filterEdit int

const (
	filterNone filterEdit = iota
	filterSearch
	filterYears
)

// genreOrder is the cycle order for genre filtering; "" means all.
var genreOrder = append([]string{""}, domain.Genres...)

// -- model --

type moviesModel struct {
	api        API
	scope      scope
	filters    domain.SearchFilters
	pageSize   int
	page       *domain.Page[domain.Movie]
	cursor     int
	genreCycle int
	editing    filterEdit
	input      string
	inputErr   string
	loading    bool
	err        string
	width      int
	height     int
}

func newMoviesModel(api API, pageSize int) moviesModel {
	if pageSize <= 0 {
		pageSize = domain.DefaultLimit
	}
	return moviesModel{
		api:      api,
		pageSize: pageSize,
		filters:  domain.DefaultFilters().WithLimit(pageSize),
	}
}

// Init starts a fresh scope and loads the current filters.
func (m moviesModel) Init() (moviesModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.loading = true
	return m, m.load()
}

func (m moviesModel) load() tea.Cmd {
	api := m.api
	ctx := m.scope.context()
	gen := m.scope.gen
	f := m.filters
	return func() tea.Msg {
		page, err := api.ListMovies(ctx, f)
		return moviesLoadedMsg{gen: gen, page: page, err: err}
	}
}

// reload refetches with new filters. The previous request is canceled and
// its result, if it still arrives, is dropped.
func (m moviesModel) reload(f domain.SearchFilters) (moviesModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.filters = f
	m.cursor = 0
	m.loading = true
	m.err = ""
	return m, m.load()
}

func (m moviesModel) Update(msg tea.Msg) (moviesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case moviesLoadedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.page = msg.page
		if m.cursor >= len(m.items()) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		if m.editing != filterNone {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m moviesModel) items() []domain.Movie {
	if m.page == nil {
		return nil
	}
	return m.page.Items
}

func (m moviesModel) selected() (domain.Movie, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return domain.Movie{}, false
	}
	return items[m.cursor], true
}

func (m moviesModel) handleKey(msg tea.KeyMsg) (moviesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if mv, ok := m.selected(); ok {
			id := mv.ID
			return m, func() tea.Msg { return navigateMsg{to: viewDetail, movieID: id} }
		}
	case "/":
		m.editing = filterSearch
		m.input = m.filters.Search
		m.inputErr = ""
	case "y":
		m.editing = filterYears
		m.input = formatYears(m.filters.MinYear, m.filters.MaxYear)
		m.inputErr = ""
	case "g":
		m.genreCycle = (m.genreCycle + 1) % len(genreOrder)
		return m.reload(m.filters.WithGenre(genreOrder[m.genreCycle]))
	case "]":
		if m.page != nil && m.page.HasNext {
			return m.reload(m.filters.WithPage(m.page.Page + 1))
		}
	case "[":
		if m.page != nil && m.page.HasPrevious {
			return m.reload(m.filters.WithPage(m.page.Page - 1))
		}
	case "c":
		m.genreCycle = 0
		return m.reload(domain.DefaultFilters().WithLimit(m.pageSize))
	case "r":
		return m.reload(m.filters)
	}
	return m, nil
}

func (m moviesModel) handleEditKey(msg tea.KeyMsg) (moviesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = filterNone
		m.input = ""
		m.inputErr = ""
		return m, nil
	case "enter":
		f := m.filters
		switch m.editing {
		case filterSearch:
			f = f.WithSearch(m.input)
		case filterYears:
			lo, hi, err := parseYears(m.input)
			if err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
			f = f.WithMinYear(lo).WithMaxYear(hi)
		}
		m.editing = filterNone
		m.input = ""
		m.inputErr = ""
		return m.reload(f)
	}
	m.input = editText(m.input, msg)
	return m, nil
}

var errYearRange = errors.New("years look like 1990-2000, 1990- or -2000")

// parseYears reads "1990-2000", "1990-", "-2000" or a single year. An empty
// string clears both bounds.
func parseYears(s string) (lo, hi int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	from, to, isRange := strings.Cut(s, "-")
	if !isRange {
		to = from
	}
	if lo, err = parseYear(from); err != nil {
		return 0, 0, err
	}
	if hi, err = parseYear(to); err != nil {
		return 0, 0, err
	}
	if lo != 0 && hi != 0 && lo > hi {
		return 0, 0, fmt.Errorf("%d is after %d", lo, hi)
	}
	return lo, hi, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, errYearRange
	}
	return y, nil
}

func formatYears(lo, hi int) string {
	switch {
	case lo == 0 && hi == 0:
		return ""
	case lo == hi:
		return strconv.Itoa(lo)
	case hi == 0:
		return fmt.Sprintf("%d-", lo)
	case lo == 0:
		return fmt.Sprintf("-%d", hi)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

func (m moviesModel) filterLine() string {
	var parts []string
	f := m.filters
	if f.Genre != "" {
		parts = append(parts, GenreStyle(f.Genre).Render(f.Genre))
	}
	if f.Search != "" {
		parts = append(parts, searchStyle.Render("\""+f.Search+"\""))
	}
	if y := formatYears(f.MinYear, f.MaxYear); y != "" {
		parts = append(parts, dimStyle.Render(y))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, dimStyle.Render(" · "))
}

func (m moviesModel) View() string {
	var b strings.Builder

	switch m.editing {
	case filterSearch:
		b.WriteString(" " + inputPromptStyle.Render("search: ") + m.input + "█\n")
	case filterYears:
		b.WriteString(" " + inputPromptStyle.Render("years: ") + m.input + "█\n")
	default:
		if line := m.filterLine(); line != "" {
			b.WriteString(line + "\n")
		}
	}
	if m.inputErr != "" {
		b.WriteString(" " + errorStyle.Render(m.inputErr) + "\n")
	}

	if m.loading && m.page == nil {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		b.WriteString(" " + helpEntry("r", "retry") + "\n")
		return b.String()
	}
	items := m.items()
	if len(items) == 0 {
		b.WriteString("\n " + dimStyle.Render("No movies found. Try adjusting your filters.") + "\n")
		b.WriteString(" " + helpEntry("c", "clear filters") + "\n")
		return b.String()
	}

	titleWidth := max(20, min(40, m.width-45))
	for i, mv := range items {
		cursor := " "
		title := normalStyle.Render(fmt.Sprintf("%-*s", titleWidth, truncStr(mv.Label(), titleWidth)))
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
			title = selectedStyle.Render(fmt.Sprintf("%-*s", titleWidth, truncStr(mv.Label(), titleWidth)))
		}
		genre := GenreStyle(mv.Genre).Render(fmt.Sprintf("%-12s", mv.Genre))
		rating := metaStyle.Render("no ratings")
		if mv.RatingsCount > 0 {
			rating = newStars(mv.RoundedAvg()).View() + " " +
				metaStyle.Render(fmt.Sprintf("%.1f (%d)", mv.RatingsAvg, mv.RatingsCount))
		}
		fmt.Fprintf(&b, " %s %s %s %s\n", cursor, title, genre, rating)
	}

	if m.page.Paginated() {
		b.WriteString("\n " + dimStyle.Render(m.page.Summary()))
		if m.page.HasPrevious {
			b.WriteString("  " + helpEntry("[", "prev"))
		}
		if m.page.HasNext {
			b.WriteString("  " + helpEntry("]", "next"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m moviesModel) helpKeys() string {
	if m.editing != filterNone {
		return helpBar("enter", "apply", "esc", "cancel")
	}
	return helpBar("j/k", "nav", "enter", "open", "/", "search", "g", "genre", "y", "years", "c", "clear", "r", "reload", "h", "help", "q", "quit")
}
