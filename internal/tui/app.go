package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/marquee/internal/browser"
	"github.com/naveenspark/marquee/pkg/domain"
)

type view int

const (
	viewMovies view = iota
	viewDetail
	viewAdd
	viewMine
	viewLogin
	viewRegister
)

// protected views need a signed-in user.
func (v view) protected() bool {
	return v == viewDetail || v == viewAdd || v == viewMine
}

// navigateMsg switches screens.
type navigateMsg struct {
	to      view
	movieID int64
	flash   string
}

type loggedOutMsg struct{}

// Options configures the app.
type Options struct {
	WebURL   string
	PageSize int
}

// App is the root Bubbletea model.
type App struct {
	api      API
	sess     Session
	webURL   string
	openURL  func(string) error
	view     view
	movies   moviesModel
	detail   detailModel
	add      addMovieModel
	mine     mineModel
	login    loginModel
	register registerModel
	peek     peekModel
	peekOpen bool
	returnTo *navigateMsg

	helpOpen   bool
	helpCursor int
	me         *domain.Identity
	flash      string
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(api API, sess Session, opts Options) App {
	webURL := strings.TrimRight(opts.WebURL, "/")
	return App{
		api:      api,
		sess:     sess,
		webURL:   webURL,
		openURL:  browser.Open,
		movies:   newMoviesModel(api, opts.PageSize),
		detail:   newDetailModel(api, webURL),
		add:      newAddMovieModel(api),
		mine:     newMineModel(api),
		login:    newLoginModel(sess),
		register: newRegisterModel(sess),
		peek:     newPeekModel(api),
		me:       sess.Identity(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), func() tea.Msg { return navigateMsg{to: viewMovies} })
}

// navigate leaves the current screen, cancelling its requests, and enters
// the target. Protected targets redirect anonymous users to login and are
// remembered for after sign-in.
func (a App) navigate(msg navigateMsg) (App, tea.Cmd) {
	a.leave()
	a.flash = msg.flash

	if msg.to.protected() && a.me == nil {
		target := msg
		target.flash = ""
		a.returnTo = &target
		if a.flash == "" {
			a.flash = "Please sign in to continue."
			if msg.to == viewAdd {
				a.flash = "You must be logged in to add a movie."
			}
		}
		msg.to = viewLogin
	}
	if (msg.to == viewLogin || msg.to == viewRegister) && a.me != nil {
		msg.to = viewMovies
	}

	a.view = msg.to
	var cmd tea.Cmd
	switch msg.to {
	case viewMovies:
		a.movies, cmd = a.movies.Init()
	case viewDetail:
		a.detail.me = a.me
		a.detail, cmd = a.detail.open(msg.movieID)
	case viewAdd:
		a.add, cmd = a.add.Init()
	case viewMine:
		a.mine, cmd = a.mine.Init()
	case viewLogin:
		a.login, cmd = a.login.Init()
	case viewRegister:
		a.register, cmd = a.register.Init()
	}
	return a, cmd
}

func (a *App) leave() {
	switch a.view {
	case viewMovies:
		a.movies.scope.close()
	case viewDetail:
		a.detail.scope.close()
	case viewAdd:
		a.add.scope.close()
	case viewMine:
		a.mine.scope.close()
	case viewLogin:
		a.login.scope.close()
	case viewRegister:
		a.register.scope.close()
	}
	if a.peekOpen {
		a.peek.scope.close()
		a.peekOpen = false
	}
}

func (a App) logout() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		// The session clears local state even when the backend call fails.
		_ = sess.Logout(context.Background())
		return loggedOutMsg{}
	}
}

// setIdentity records a session change and moves off protected screens
// when the user is gone.
func (a App) setIdentity(id *domain.Identity, flash string) (App, tea.Cmd) {
	a.me = id
	a.detail.me = id
	if id == nil && a.view.protected() {
		return a.navigate(navigateMsg{to: a.view, movieID: a.detail.movieID, flash: flash})
	}
	if flash != "" {
		a.flash = flash
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + flash(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.movies, _ = a.movies.Update(bodyMsg)
		a.detail, _ = a.detail.Update(bodyMsg)
		a.mine, _ = a.mine.Update(bodyMsg)
		a.peek, _ = a.peek.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.navigate(msg)

	case showPeekMsg:
		a.peekOpen = true
		var cmd tea.Cmd
		a.peek = newPeekModel(a.api)
		a.peek.width = a.width
		a.peek, cmd = a.peek.load(msg.userID, msg.username)
		return a, cmd

	case IdentityChangedMsg:
		flash := ""
		if a.me != nil && msg.Identity == nil {
			flash = "Your session has expired. Please sign in again."
		}
		return a.setIdentity(msg.Identity, flash)

	case loggedOutMsg:
		return a.setIdentity(nil, "Signed out.")

	case authenticatedMsg:
		var current bool
		switch a.view {
		case viewLogin:
			current = a.login.scope.current(msg.gen)
			a.login, _ = a.login.Update(msg)
		case viewRegister:
			current = a.register.scope.current(msg.gen)
			a.register, _ = a.register.Update(msg)
		}
		if !current || msg.err != nil || msg.identity == nil {
			return a, nil
		}
		a.me = msg.identity
		target := navigateMsg{to: viewMovies}
		if a.returnTo != nil {
			target = *a.returnTo
			a.returnTo = nil
		}
		target.flash = "Welcome, " + msg.identity.DisplayName() + "!"
		return a.navigate(target)

	// Results are routed to the screen that requested them; each screen
	// drops results from a scope it has since left.
	case moviesLoadedMsg:
		a.movies, _ = a.movies.Update(msg)
		return a, nil
	case detailLoadedMsg, detailRatingsMsg, ratingSavedMsg, ratingDeletedMsg, movieDeletedMsg, starsChangedMsg:
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	case movieCreatedMsg:
		var cmd tea.Cmd
		a.add, cmd = a.add.Update(msg)
		return a, cmd
	case myRatingsLoadedMsg, myRatingDeletedMsg:
		var cmd tea.Cmd
		a.mine, cmd = a.mine.Update(msg)
		return a, cmd
	case peekLoadedMsg:
		a.peek, _ = a.peek.Update(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	a.flash = ""

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if a.webURL != "" && a.openURL != nil {
				a.openURL(a.webURL + helpItems[a.helpCursor].path) //nolint:errcheck // best-effort browser open
			}
		}
		return a, nil
	}

	// Peek overlay captures all keys when open
	if a.peekOpen {
		var cmd tea.Cmd
		a.peek, cmd = a.peek.Update(msg)
		if a.peek.closed {
			a.peekOpen = false
		}
		return a, cmd
	}

	if a.isEditing() {
		switch msg.String() {
		case "esc":
			switch a.view {
			case viewAdd, viewLogin, viewRegister:
				a.returnTo = nil
				return a.navigate(navigateMsg{to: viewMovies})
			}
		case "ctrl+r":
			if a.view == viewLogin {
				return a.navigate(navigateMsg{to: viewRegister})
			}
		case "ctrl+l":
			if a.view == viewRegister {
				return a.navigate(navigateMsg{to: viewLogin})
			}
		}
		return a.routeKey(msg)
	}

	switch msg.String() {
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil
	case "q":
		return a, tea.Quit
	case "1":
		if a.view != viewMovies {
			return a.navigate(navigateMsg{to: viewMovies})
		}
		return a, nil
	case "2":
		if a.view != viewMine {
			return a.navigate(navigateMsg{to: viewMine})
		}
		return a, nil
	case "3":
		if a.view != viewAdd {
			return a.navigate(navigateMsg{to: viewAdd})
		}
		return a, nil
	case "l":
		if a.me == nil {
			return a.navigate(navigateMsg{to: viewLogin})
		}
		return a, nil
	case "L":
		if a.me != nil {
			return a, a.logout()
		}
		return a, nil
	}
	return a.routeKey(msg)
}

func (a App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewMovies:
		a.movies, cmd = a.movies.Update(msg)
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewAdd:
		a.add, cmd = a.add.Update(msg)
	case viewMine:
		a.mine, cmd = a.mine.Update(msg)
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewMovies:
		return a.movies.editing != filterNone
	case viewDetail:
		return a.detail.form.open
	case viewAdd, viewLogin, viewRegister:
		return true
	}
	return false
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	// Header: centered shimmer logo + who is signed in
	header := center(renderShimmerLogo(a.frame), a.width)
	var who string
	if a.me != nil {
		who = metaStyle.Render("signed in as ") + selectedStyle.Render(a.me.DisplayName())
	} else {
		who = metaStyle.Render("browsing anonymously · l to sign in")
	}
	header += "\n" + center(who, a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Movies", viewMovies},
		{"2", "My Ratings", viewMine},
		{"3", "Add Movie", viewAdd},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		active := t.v == a.view || (t.v == viewMovies && a.view == viewDetail)
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max(0, (colWidth-labelWidth)/2)
		rightPad := max(0, colWidth-labelWidth-leftPad)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewMovies:
		body = a.movies.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + a.movies.helpKeys()
	case viewDetail:
		body = a.detail.View()
		help = " " + a.detail.helpKeys()
	case viewAdd:
		body = a.add.View()
		help = " " + helpBar("tab", "next", "h/l", "genre", "ctrl+s", "submit", "esc", "cancel")
	case viewMine:
		body = a.mine.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + a.mine.helpKeys()
	case viewLogin:
		body = a.login.View()
		help = " " + helpBar("tab", "next", "enter", "sign in", "ctrl+r", "register", "esc", "cancel")
	case viewRegister:
		body = a.register.View()
		help = " " + helpBar("tab", "next", "enter", "create", "ctrl+l", "sign in", "esc", "cancel")
	}
	if a.me != nil && !a.isEditing() {
		help += "  " + helpEntry("L", "sign out")
	}

	if a.peekOpen {
		body = a.peek.View()
		help = " " + helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}
	if a.helpOpen {
		body = helpView(a.helpCursor, a.webURL)
		help = " " + helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	var flashBar string
	if a.flash != "" {
		flashBar = " " + successStyle.Render(a.flash)
	}

	// Chrome budget: header(2) + tabs(1) + flash(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, flashBar, help)
}
