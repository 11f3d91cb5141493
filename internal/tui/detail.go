package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/internal/browser"
	"github.com/naveenspark/marquee/internal/forms"
	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// -- messages --

type detailLoadedMsg struct {
	gen   int
	movie *domain.MovieDetail
	err   error
}

type detailRatingsMsg struct {
	gen     int
	ratings []domain.Rating
	err     error
}

type ratingSavedMsg struct {
	gen     int
	updated bool
	err     error
}

type ratingDeletedMsg struct {
	gen int
	err error
}

type movieDeletedMsg struct {
	gen   int
	title string
	err   error
}

type formFocus int

const (
	focusStars formFocus = iota
	focusReview
)

// ratingForm is the inline rate / update form.
type ratingForm struct {
	open       bool
	stars      stars
	review     string
	focus      formFocus
	err        string
	submitting bool
}

func newRatingForm() ratingForm {
	return ratingForm{stars: newStarInput(0)}
}

// -- model --

type detailModel struct {
	api      API
	scope    scope
	me       *domain.Identity
	webURL   string
	openURL  func(string) error
	copyText func(string) error

	movieID       int64
	movie         *domain.MovieDetail
	ratings       []domain.Rating
	pending       int
	err           string
	ratingsErr    string
	cursor        int
	form          ratingForm
	confirmDelete bool
	flash         string
	width         int
	height        int
}

func newDetailModel(api API, webURL string) detailModel {
	return detailModel{
		api:      api,
		webURL:   strings.TrimRight(webURL, "/"),
		openURL:  browser.Open,
		copyText: clipboard.WriteAll,
		form:     newRatingForm(),
	}
}

// open resets the screen for movie id and fetches the movie and its
// ratings in parallel.
func (m detailModel) open(id int64) (detailModel, tea.Cmd) {
	m.movieID = id
	m.movie = nil
	m.ratings = nil
	m.err = ""
	m.ratingsErr = ""
	m.cursor = 0
	m.form = newRatingForm()
	m.confirmDelete = false
	m.flash = ""
	return m.reload()
}

// reload supersedes any load still in flight so only the newest pair of
// responses counts toward pending.
func (m detailModel) reload() (detailModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.pending = 2
	return m, tea.Batch(m.loadMovie(), m.loadRatings())
}

func (m detailModel) loading() bool {
	return m.pending > 0
}

func (m detailModel) loadMovie() tea.Cmd {
	api, ctx, gen, id := m.api, m.scope.context(), m.scope.gen, m.movieID
	return func() tea.Msg {
		mv, err := api.GetMovie(ctx, id)
		return detailLoadedMsg{gen: gen, movie: mv, err: err}
	}
}

func (m detailModel) loadRatings() tea.Cmd {
	api, ctx, gen, id := m.api, m.scope.context(), m.scope.gen, m.movieID
	return func() tea.Msg {
		rs, err := api.ListMovieRatings(ctx, id)
		return detailRatingsMsg{gen: gen, ratings: rs, err: err}
	}
}

// myRating finds the current user's rating, checking the recent ratings
// embedded in the movie first and the full list second.
func (m detailModel) myRating() *domain.Rating {
	if m.movie != nil {
		if r := domain.MyRating(m.movie.RecentRatings, m.me); r != nil {
			return r
		}
	}
	return domain.MyRating(m.ratings, m.me)
}

// shownRatings is the full list once loaded, else the embedded recent ones.
func (m detailModel) shownRatings() []domain.Rating {
	if m.ratings != nil {
		return m.ratings
	}
	if m.movie != nil {
		return m.movie.RecentRatings
	}
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case detailLoadedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.pending--
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.movie = msg.movie

	case detailRatingsMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.pending--
		if msg.err != nil {
			m.ratingsErr = client.Message(msg.err)
			return m, nil
		}
		m.ratingsErr = ""
		m.ratings = msg.ratings
		if m.cursor >= len(m.ratings) {
			m.cursor = 0
		}

	case starsChangedMsg:
		m.form.err = ""

	case ratingSavedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.form.submitting = false
		if msg.err != nil {
			m.form.err = client.Message(msg.err)
			if fe := client.FieldErrors(msg.err); fe["rating"] != "" {
				m.form.err = fe["rating"]
			}
			return m, nil
		}
		m.form = newRatingForm()
		m.flash = "Rating submitted!"
		if msg.updated {
			m.flash = "Rating updated!"
		}
		return m.reload()

	case ratingDeletedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.flash = "error: " + client.Message(msg.err)
			return m, nil
		}
		m.form = newRatingForm()
		m.flash = "Rating deleted."
		return m.reload()

	case movieDeletedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.flash = "error: " + client.Message(msg.err)
			return m, nil
		}
		flash := fmt.Sprintf("Deleted %q.", msg.title)
		return m, func() tea.Msg { return navigateMsg{to: viewMovies, flash: flash} }

	case tea.KeyMsg:
		if m.form.open {
			return m.handleFormKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	key := msg.String()
	if key != "D" {
		m.confirmDelete = false
	}
	switch key {
	case "esc", "backspace":
		m.scope.close()
		return m, func() tea.Msg { return navigateMsg{to: viewMovies} }
	case "j", "down":
		if m.cursor < len(m.shownRatings())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.flash = ""
		return m.reload()
	case "e", "enter":
		if m.movie == nil {
			return m, nil
		}
		m.form = newRatingForm()
		m.form.open = true
		if mine := m.myRating(); mine != nil {
			m.form.stars.value = mine.Rating
			m.form.review = mine.Review
		}
		m.flash = ""
	case "d":
		mine := m.myRating()
		if mine == nil {
			return m, nil
		}
		api, ctx, gen, id := m.api, m.scope.context(), m.scope.gen, mine.ID
		return m, func() tea.Msg {
			return ratingDeletedMsg{gen: gen, err: api.DeleteRating(ctx, id)}
		}
	case "D":
		if m.movie == nil || !m.movie.OwnedBy(m.me) {
			return m, nil
		}
		if !m.confirmDelete {
			m.confirmDelete = true
			return m, nil
		}
		m.confirmDelete = false
		api, ctx, gen, id, title := m.api, m.scope.context(), m.scope.gen, m.movie.ID, m.movie.Title
		return m, func() tea.Msg {
			return movieDeletedMsg{gen: gen, title: title, err: api.DeleteMovie(ctx, id)}
		}
	case "p":
		rs := m.shownRatings()
		if m.cursor < len(rs) {
			r := rs[m.cursor]
			return m, func() tea.Msg { return showPeekMsg{userID: r.User, username: r.UserUsername} }
		}
	case "c":
		if m.movie != nil && m.copyText != nil {
			text := m.movie.Label()
			if m.movie.RatingsCount > 0 {
				text += fmt.Sprintf(" ★%.1f", m.movie.RatingsAvg)
			}
			if err := m.copyText(text); err != nil {
				m.flash = "error: copy failed"
			} else {
				m.flash = "copied"
			}
		}
	case "o":
		if m.webURL != "" && m.openURL != nil {
			if err := m.openURL(fmt.Sprintf("%s/movies/%d", m.webURL, m.movieID)); err != nil {
				m.flash = "error: " + err.Error()
			}
		}
	}
	return m, nil
}

func (m detailModel) handleFormKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.form = newRatingForm()
		return m, nil
	case "tab", "shift+tab":
		if m.form.focus == focusStars {
			m.form.focus = focusReview
		} else {
			m.form.focus = focusStars
		}
		return m, nil
	case "ctrl+s":
		return m.submit()
	}

	if m.form.focus == focusStars {
		if msg.String() == "enter" {
			return m.submit()
		}
		var cmd tea.Cmd
		m.form.stars, cmd = m.form.stars.Update(msg)
		return m, cmd
	}
	m.form.review = editText(m.form.review, msg)
	return m, nil
}

// submit validates locally and sends nothing when no star is picked.
func (m detailModel) submit() (detailModel, tea.Cmd) {
	f := forms.Rating{Rating: m.form.stars.value, Review: m.form.review}
	if errs := f.Validate(); errs != nil {
		m.form.err = errs["rating"]
		return m, nil
	}
	m.form.err = ""
	m.form.submitting = true

	api, ctx, gen, movieID := m.api, m.scope.context(), m.scope.gen, m.movieID
	in := f.Input()
	if mine := m.myRating(); mine != nil {
		ratingID := mine.ID
		return m, func() tea.Msg {
			_, err := api.UpdateRating(ctx, ratingID, in)
			return ratingSavedMsg{gen: gen, updated: true, err: err}
		}
	}
	return m, func() tea.Msg {
		_, err := api.RateMovie(ctx, movieID, in)
		return ratingSavedMsg{gen: gen, err: err}
	}
}

func (m detailModel) View() string {
	var b strings.Builder

	if m.movie == nil {
		switch {
		case m.err != "":
			b.WriteString("\n " + errorStyle.Render("error: "+m.err) + "\n")
			b.WriteString(" " + helpBar("r", "retry", "esc", "back") + "\n")
		default:
			b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		}
		return b.String()
	}

	mv := m.movie
	b.WriteString("\n " + selectedStyle.Render(mv.Label()) + "  " + GenreStyle(mv.Genre).Render(mv.Genre) + "\n")
	if mv.RatingsCount > 0 {
		b.WriteString(" " + newStars(mv.RoundedAvg()).View() + " " +
			metaStyle.Render(fmt.Sprintf("%.1f average from %d rating(s)", mv.RatingsAvg, mv.RatingsCount)) + "\n")
	} else {
		b.WriteString(" " + metaStyle.Render("not rated yet") + "\n")
	}
	if mv.CreatedByUsername != "" {
		line := "added by " + mv.CreatedByUsername
		if !mv.CreatedAt.IsZero() {
			line += " · " + formatDate(mv.CreatedAt)
		}
		b.WriteString(" " + metaStyle.Render(line) + "\n")
	}
	if mv.Description != "" {
		b.WriteString("\n")
		for _, line := range wrap(mv.Description, max(40, m.width-4)) {
			b.WriteString(" " + normalStyle.Render(line) + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n " + errorStyle.Render("error: "+m.err) + "  " + helpBar("r", "retry") + "\n")
	}

	b.WriteString("\n" + m.formView())

	if m.flash != "" {
		style := successStyle
		if strings.HasPrefix(m.flash, "error:") {
			style = errorStyle
		}
		b.WriteString(" " + style.Render(m.flash) + "\n")
	}
	if m.confirmDelete {
		b.WriteString(" " + errorStyle.Render("press D again to delete this movie") + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("── RATINGS ──") + "\n")
	if m.loading() {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	}
	if m.ratingsErr != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.ratingsErr) + "\n")
	}
	rs := m.shownRatings()
	if len(rs) == 0 && !m.loading() && m.ratingsErr == "" {
		b.WriteString(" " + dimStyle.Render("No ratings yet. Be the first to rate this movie!") + "\n")
	}
	for i, r := range rs {
		b.WriteString(m.ratingRow(i, r))
	}
	return b.String()
}

func (m detailModel) ratingRow(i int, r domain.Rating) string {
	cursor := " "
	name := normalStyle.Render(r.UserUsername)
	if i == m.cursor {
		cursor = accentStyle.Render("▸")
		name = selectedStyle.Render(r.UserUsername)
	}
	if m.me != nil && m.me.ID != 0 && r.User == m.me.ID {
		name += " " + accentStyle.Render("(you)")
	}
	s := newStars(r.Rating)
	s.showLabel = true
	row := fmt.Sprintf(" %s %s  %s  %s", cursor, name, s.View(), metaStyle.Render(formatTime(r.CreatedAt)))
	if r.Edited() {
		row += " " + metaStyle.Render("· Updated "+formatDate(r.UpdatedAt))
	}
	row += "\n"
	if r.Review != "" {
		row += "     " + reviewStyle.Render(truncStr(oneLine(r.Review), max(30, m.width-8))) + "\n"
	}
	return row
}

func (m detailModel) formView() string {
	title := "Rate This Movie"
	if m.myRating() != nil {
		title = "Update Your Rating"
	}
	if !m.form.open {
		if mine := m.myRating(); mine != nil {
			return " " + accentStyle.Render("Your rating: ") + newStars(mine.Rating).View() + "  " +
				helpBar("e", "edit", "d", "delete") + "\n"
		}
		return " " + helpBar("e", strings.ToLower(title)) + "\n"
	}

	var b strings.Builder
	b.WriteString(" " + inputPromptStyle.Render(title) + "\n")
	cursor := " "
	if m.form.focus == focusStars {
		cursor = accentStyle.Render(">")
	}
	b.WriteString(" " + cursor + " " + m.form.stars.View() + "\n")
	if m.form.err != "" {
		b.WriteString("     " + errorStyle.Render(m.form.err) + "\n")
	}
	review := m.form.review
	if review == "" && m.form.focus != focusReview {
		review = inputPlaceholderStyle.Render("optional review...")
	}
	b.WriteString(field("review", review, m.form.focus == focusReview, false, ""))
	if m.form.submitting {
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	}
	return b.String()
}

func (m detailModel) helpKeys() string {
	if m.form.open {
		return helpBar("1-5/h/l", "stars", "tab", "review", "ctrl+s", "submit", "esc", "cancel")
	}
	pairs := []string{"e", "rate", "j/k", "ratings", "p", "peek", "c", "copy"}
	if m.webURL != "" {
		pairs = append(pairs, "o", "open")
	}
	if m.movie != nil && m.movie.OwnedBy(m.me) {
		pairs = append(pairs, "D", "delete movie")
	}
	pairs = append(pairs, "r", "reload", "esc", "back")
	return helpBar(pairs...)
}
