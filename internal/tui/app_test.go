package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/pkg/domain"
)

func newTestApp(api *fakeAPI, sess *fakeSession) App {
	a := NewApp(api, sess, Options{WebURL: "http://localhost:5173", PageSize: 10})
	a.openURL = func(string) error { return nil }
	a.detail.openURL = a.openURL
	a.detail.copyText = func(string) error { return nil }
	a.width = 100
	a.height = 40
	return a
}

func seededAPI() *fakeAPI {
	api := newFakeAPI()
	api.movies = []domain.Movie{
		{ID: 1, Title: "Alien", Genre: "Horror", ReleaseYear: 1979, RatingsCount: 2, RatingsAvg: 4.5},
		{ID: 2, Title: "Heat", Genre: "Thriller", ReleaseYear: 1995},
	}
	api.detail[1] = &domain.MovieDetail{Movie: api.movies[0], CreatedBy: 1}
	api.ratings[1] = []domain.Rating{
		{ID: 10, Movie: 1, MovieTitle: "Alien", User: 1, UserUsername: "alice", Rating: 5},
		{ID: 11, Movie: 1, MovieTitle: "Alien", User: 3, UserUsername: "carol", Rating: 4},
	}
	return api
}

func start(t *testing.T, a App) App {
	t.Helper()
	return settle(t, a, a.Init())
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	model, cmd := a.Update(keyMsg(key))
	return settle(t, model.(App), cmd)
}

func TestAppInitLoadsMovies(t *testing.T) {
	api := seededAPI()
	a := start(t, newTestApp(api, &fakeSession{}))

	if a.view != viewMovies {
		t.Fatalf("view = %d, want movies", a.view)
	}
	if api.called("ListMovies") != 1 {
		t.Errorf("ListMovies called %d times, want 1", api.called("ListMovies"))
	}
	view := a.View()
	for _, want := range []string{"Alien (1979)", "Heat (1995)", "browsing anonymously"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestAppProtectedTabRedirectsToLoginAndBack(t *testing.T) {
	api := seededAPI()
	api.mine = []domain.Rating{{ID: 10, Movie: 1, MovieTitle: "Alien", User: 1, Rating: 5}}
	sess := &fakeSession{}
	a := start(t, newTestApp(api, sess))

	a = press(t, a, "2")
	if a.view != viewLogin {
		t.Fatalf("anonymous user on my ratings: view = %d, want login", a.view)
	}
	if a.returnTo == nil || a.returnTo.to != viewMine {
		t.Fatalf("returnTo = %+v, want my ratings", a.returnTo)
	}
	if api.called("ListMyRatings") != 0 {
		t.Error("protected data fetched while anonymous")
	}

	a = typeText(t, a, "alice@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, "password")
	a = press(t, a, "enter")

	if a.me == nil || a.me.Username != "alice" {
		t.Fatalf("identity = %+v, want alice", a.me)
	}
	if a.view != viewMine {
		t.Fatalf("after login view = %d, want my ratings", a.view)
	}
	if api.called("ListMyRatings") != 1 {
		t.Errorf("ListMyRatings called %d times, want 1", api.called("ListMyRatings"))
	}
	if !strings.Contains(a.View(), "signed in as") {
		t.Errorf("header should show signed-in user, got:\n%s", a.View())
	}
}

func TestAppLoginFailureStaysOnForm(t *testing.T) {
	a := start(t, newTestApp(seededAPI(), &fakeSession{}))
	a = press(t, a, "l")
	a = typeText(t, a, "alice@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, "wrongpass")
	a = press(t, a, "enter")

	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if !strings.Contains(a.View(), "No active account found") {
		t.Errorf("expected backend message in view, got:\n%s", a.View())
	}
}

func TestAppLoginValidationSendsNothing(t *testing.T) {
	sess := &fakeSession{}
	a := start(t, newTestApp(seededAPI(), sess))
	a = press(t, a, "l")
	a = typeText(t, a, "not-an-email")
	a = press(t, a, "tab")
	a = press(t, a, "enter")

	view := a.View()
	if !strings.Contains(view, "Email is invalid") || !strings.Contains(view, "Password is required") {
		t.Errorf("expected inline errors, got:\n%s", view)
	}
	if a.login.submitting {
		t.Error("form submitted despite validation errors")
	}
}

func TestAppOpenMovieRequiresLogin(t *testing.T) {
	api := seededAPI()
	a := start(t, newTestApp(api, &fakeSession{}))

	a = press(t, a, "enter")
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	a = typeText(t, a, "alice@example.com")
	a = press(t, a, "tab")
	a = typeText(t, a, "password")
	a = press(t, a, "enter")

	if a.view != viewDetail || a.detail.movieID != 1 {
		t.Fatalf("after login view = %d movie = %d, want detail of 1", a.view, a.detail.movieID)
	}
	if !strings.Contains(a.View(), "Update Your Rating") && !strings.Contains(a.View(), "Your rating") {
		t.Errorf("alice rated Alien; expected her rating on the detail, got:\n%s", a.View())
	}
}

func TestAppLoginScreenRedirectsWhenAuthenticated(t *testing.T) {
	sess := &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}
	a := start(t, newTestApp(seededAPI(), sess))

	model, cmd := a.Update(navigateMsg{to: viewLogin})
	a = settle(t, model.(App), cmd)
	if a.view != viewMovies {
		t.Errorf("authenticated user sent to login: view = %d, want movies", a.view)
	}
}

func TestAppLogout(t *testing.T) {
	api := seededAPI()
	sess := &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}
	a := start(t, newTestApp(api, sess))
	a = press(t, a, "2")
	if a.view != viewMine {
		t.Fatalf("view = %d, want my ratings", a.view)
	}

	a = press(t, a, "L")
	if sess.logouts != 1 {
		t.Errorf("Logout called %d times, want 1", sess.logouts)
	}
	if a.me != nil {
		t.Errorf("identity = %+v after logout, want nil", a.me)
	}
	if a.view.protected() {
		t.Errorf("still on protected view %d after logout", a.view)
	}
}

func TestAppSessionExpiryLeavesProtectedScreen(t *testing.T) {
	sess := &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}
	a := start(t, newTestApp(seededAPI(), sess))
	a = press(t, a, "3")
	if a.view != viewAdd {
		t.Fatalf("view = %d, want add", a.view)
	}

	model, cmd := a.Update(IdentityChangedMsg{})
	a = settle(t, model.(App), cmd)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if !strings.Contains(a.View(), "session has expired") {
		t.Errorf("expected expiry notice, got:\n%s", a.View())
	}
}

func TestAppEscFromAddReturnsToMovies(t *testing.T) {
	sess := &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}
	a := start(t, newTestApp(seededAPI(), sess))
	a = press(t, a, "3")
	a = press(t, a, "esc")
	if a.view != viewMovies {
		t.Errorf("view = %d after esc, want movies", a.view)
	}
}

func TestAppQNotFiredWhenEditing(t *testing.T) {
	a := start(t, newTestApp(seededAPI(), &fakeSession{}))
	a = press(t, a, "/")
	if !a.isEditing() {
		t.Fatal("search should put the app in editing mode")
	}
	model, cmd := a.Update(keyMsg("q"))
	a = model.(App)
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q quit while editing the search")
		}
	}
	if a.movies.input != "q" {
		t.Errorf("search input = %q, want %q", a.movies.input, "q")
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := start(t, newTestApp(seededAPI(), &fakeSession{}))
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	var opened string
	a := start(t, newTestApp(seededAPI(), &fakeSession{}))
	a.openURL = func(u string) error { opened = u; return nil }

	a = press(t, a, "h")
	if !a.helpOpen || !strings.Contains(a.View(), "M A R Q U E E") {
		t.Fatalf("help overlay not shown:\n%s", a.View())
	}
	a = press(t, a, "j")
	a = press(t, a, "enter")
	if opened != "http://localhost:5173/movies/add" {
		t.Errorf("opened %q, want the add movie page", opened)
	}
	a = press(t, a, "esc")
	if a.helpOpen {
		t.Error("esc should close help")
	}
}

func TestAppPeekOverlayOpenAndClose(t *testing.T) {
	api := seededAPI()
	api.byUser[3] = []domain.Rating{{ID: 11, Movie: 1, MovieTitle: "Alien", User: 3, Rating: 4}}
	a := start(t, newTestApp(api, &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}))

	model, cmd := a.Update(showPeekMsg{userID: 3, username: "carol"})
	a = settle(t, model.(App), cmd)
	if !a.peekOpen {
		t.Fatal("expected peekOpen=true after showPeekMsg")
	}
	if !strings.Contains(a.View(), "carol") || !strings.Contains(a.View(), "Alien") {
		t.Errorf("peek should show carol's ratings, got:\n%s", a.View())
	}

	a = press(t, a, "esc")
	if a.peekOpen {
		t.Error("expected peekOpen=false after esc")
	}
}

func TestAppDropsResultsFromLeftScreen(t *testing.T) {
	api := seededAPI()
	a := start(t, newTestApp(api, &fakeSession{id: &domain.Identity{ID: 1, Username: "alice"}}))
	a = press(t, a, "enter")
	staleGen := a.detail.scope.gen

	a = press(t, a, "esc")
	model, _ := a.Update(navigateMsg{to: viewDetail, movieID: 2})
	a = model.(App)
	// The new screen is loading; an answer for the old one arrives late.
	model, _ = a.Update(detailLoadedMsg{gen: staleGen, movie: api.detail[1]})
	a = model.(App)
	if a.detail.movie != nil {
		t.Errorf("stale result applied: %+v", a.detail.movie)
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestApp(seededAPI(), &fakeSession{})
	model, cmd := a.Update(shimmerTickMsg(time.Now()))
	if model.(App).frame != 1 {
		t.Errorf("frame = %d, want 1", model.(App).frame)
	}
	if cmd == nil {
		t.Error("expected next tick command")
	}
}

func TestAppViewFitsTerminal(t *testing.T) {
	api := seededAPI()
	for i := 3; i < 60; i++ {
		api.movies = append(api.movies, domain.Movie{ID: int64(i), Title: "Filler", Genre: "Other", ReleaseYear: 2000})
	}
	a := start(t, newTestApp(api, &fakeSession{}))
	a.height = 20
	lines := strings.Count(a.View(), "\n") + 1
	if lines > a.height {
		t.Errorf("view is %d lines, terminal is %d", lines, a.height)
	}
}
