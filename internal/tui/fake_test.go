package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// fakeAPI is an in-memory API that records calls.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []string
	movies  []domain.Movie
	detail  map[int64]*domain.MovieDetail
	ratings map[int64][]domain.Rating
	mine    []domain.Rating
	byUser  map[int64][]domain.Rating
	err     error
	filters []domain.SearchFilters
	rated   []domain.RatingInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		detail:  map[int64]*domain.MovieDetail{},
		ratings: map[int64][]domain.Rating{},
		byUser:  map[int64][]domain.Rating{},
	}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAPI) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListMovies(_ context.Context, fl domain.SearchFilters) (*domain.Page[domain.Movie], error) {
	if err := f.record("ListMovies"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.filters = append(f.filters, fl)
	f.mu.Unlock()
	return &domain.Page[domain.Movie]{Items: f.movies, Page: fl.Page, Limit: fl.Limit, Total: len(f.movies), TotalPages: 1}, nil
}

func (f *fakeAPI) GetMovie(_ context.Context, id int64) (*domain.MovieDetail, error) {
	if err := f.record("GetMovie"); err != nil {
		return nil, err
	}
	return f.detail[id], nil
}

func (f *fakeAPI) CreateMovie(_ context.Context, in domain.MovieInput) (*domain.Movie, error) {
	if err := f.record("CreateMovie"); err != nil {
		return nil, err
	}
	return &domain.Movie{ID: 99, Title: in.Title, Genre: in.Genre, ReleaseYear: in.ReleaseYear}, nil
}

func (f *fakeAPI) DeleteMovie(context.Context, int64) error {
	return f.record("DeleteMovie")
}

func (f *fakeAPI) RateMovie(_ context.Context, movieID int64, in domain.RatingInput) (*domain.RatingResponse, error) {
	if err := f.record("RateMovie"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.rated = append(f.rated, in)
	f.mu.Unlock()
	return &domain.RatingResponse{Rating: domain.Rating{Movie: movieID, Rating: in.Rating, Review: in.Review}}, nil
}

func (f *fakeAPI) UpdateRating(_ context.Context, id int64, in domain.RatingInput) (*domain.Rating, error) {
	if err := f.record("UpdateRating"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.rated = append(f.rated, in)
	f.mu.Unlock()
	return &domain.Rating{ID: id, Rating: in.Rating, Review: in.Review}, nil
}

func (f *fakeAPI) DeleteRating(context.Context, int64) error {
	return f.record("DeleteRating")
}

func (f *fakeAPI) ListMovieRatings(_ context.Context, id int64) ([]domain.Rating, error) {
	if err := f.record("ListMovieRatings"); err != nil {
		return nil, err
	}
	return f.ratings[id], nil
}

func (f *fakeAPI) ListMyRatings(context.Context) ([]domain.Rating, error) {
	if err := f.record("ListMyRatings"); err != nil {
		return nil, err
	}
	return f.mine, nil
}

func (f *fakeAPI) ListUserRatings(_ context.Context, id int64) ([]domain.Rating, error) {
	if err := f.record("ListUserRatings"); err != nil {
		return nil, err
	}
	return f.byUser[id], nil
}

// fakeSession logs in anyone whose password is "password".
type fakeSession struct {
	mu      sync.Mutex
	id      *domain.Identity
	logouts int
}

func (s *fakeSession) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *fakeSession) Login(_ context.Context, email, password string) (*domain.Identity, error) {
	if password != "password" {
		return nil, &client.HTTPError{StatusCode: 401, Message: "No active account found with the given credentials"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &domain.Identity{ID: 1, Username: "alice", Email: email}
	return s.id, nil
}

func (s *fakeSession) Register(_ context.Context, r client.RegisterRequest) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &domain.Identity{ID: 2, Username: r.Username, Email: r.Email}
	return s.id, nil
}

func (s *fakeSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = nil
	s.logouts++
	return nil
}

// drain runs cmd and any batched commands it yields, returning every
// message produced. Tick commands are skipped.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(50 * time.Millisecond):
		return nil // a tick; not interesting here
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds every message cmd produces back into the app until it goes
// quiet.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for i := 0; i < 10 && cmd != nil; i++ {
		var next []tea.Cmd
		for _, msg := range drain(t, cmd) {
			model, c := a.Update(msg)
			a = model.(App)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return a
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(t *testing.T, a App, text string) App {
	t.Helper()
	for _, r := range text {
		model, _ := a.Update(keyMsg(string(r)))
		a = model.(App)
	}
	return a
}
