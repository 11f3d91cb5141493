// Package apitest runs an in-memory movie-rating backend for tests. It
// speaks the same REST contract as the real service, issues real HS256
// JWTs and exposes knobs to force token expiry and refresh failure.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/naveenspark/marquee/pkg/domain"
)

type user struct {
	id       int64
	username string
	email    string
	password string
}

type movie struct {
	domain.Movie
	createdBy int64
}

// Server is a fake backend. The API is mounted under /api.
type Server struct {
	*httptest.Server

	secret []byte

	mu           sync.Mutex
	users        map[int64]*user
	movies       map[int64]*movie
	ratings      map[int64]*domain.Rating
	revoked      map[string]bool
	nextID       int64
	generation   int
	failRefresh  bool
	rejectAccess bool
	refreshDelay time.Duration
	hits         map[string]int
	now          func() time.Time
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:  []byte("apitest-secret"),
		users:   make(map[int64]*user),
		movies:  make(map[int64]*movie),
		ratings: make(map[int64]*domain.Rating),
		revoked: make(map[string]bool),
		hits:    make(map[string]int),
		now:     time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// APIURL is the base URL clients should be configured with.
func (s *Server) APIURL() string { return s.URL + "/api" }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register/", s.handleRegister)
		r.Post("/auth/login/", s.handleLogin)
		r.Post("/auth/token/refresh/", s.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(false))
			r.Get("/movies/", s.handleListMovies)
			r.Get("/movies/{id}/", s.handleGetMovie)
			r.Get("/movies/{id}/ratings/", s.handleMovieRatings)
			r.Get("/users/{id}/ratings/", s.handleUserRatings)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate(true))
			r.Post("/auth/logout/", s.handleLogout)
			r.Post("/movies/add/", s.handleCreateMovie)
			r.Delete("/movies/{id}/", s.handleDeleteMovie)
			r.Post("/movies/{id}/ratings/", s.handleRateMovie)
			r.Put("/ratings/{id}/", s.handleUpdateRating)
			r.Delete("/ratings/{id}/", s.handleDeleteRating)
			r.Get("/user/ratings/", s.handleMyRatings)
		})
	})
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Hits returns how many requests reached method and path, where path is
// relative to the API root, e.g. Hits("POST", "/auth/token/refresh/").
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" /api"+path]
}

// ExpireAccess invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// FailRefresh makes the refresh endpoint reject every token.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	s.failRefresh = fail
	s.mu.Unlock()
}

// RejectAccess makes every bearer token fail authentication, including
// freshly refreshed ones.
func (s *Server) RejectAccess(reject bool) {
	s.mu.Lock()
	s.rejectAccess = reject
	s.mu.Unlock()
}

// SlowRefresh delays refresh responses by d.
func (s *Server) SlowRefresh(d time.Duration) {
	s.mu.Lock()
	s.refreshDelay = d
	s.mu.Unlock()
}

// AddUser seeds an account and returns its identity.
func (s *Server) AddUser(username, email, password string) domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(username, email, password)
	return domain.Identity{ID: u.id, Username: u.username, Email: u.email}
}

func (s *Server) addUserLocked(username, email, password string) *user {
	s.nextID++
	u := &user{id: s.nextID, username: username, email: email, password: password}
	s.users[u.id] = u
	return u
}

// AddMovie seeds a movie created by the given user and returns its id.
func (s *Server) AddMovie(title, genre string, year int, createdBy int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMovieLocked(domain.MovieInput{Title: title, Genre: genre, ReleaseYear: year}, createdBy).ID
}

func (s *Server) addMovieLocked(in domain.MovieInput, createdBy int64) *movie {
	s.nextID++
	m := &movie{
		Movie: domain.Movie{
			ID:          s.nextID,
			Title:       in.Title,
			Genre:       in.Genre,
			ReleaseYear: in.ReleaseYear,
			Description: in.Description,
			CreatedAt:   s.now().UTC(),
		},
		createdBy: createdBy,
	}
	if u := s.users[createdBy]; u != nil {
		m.CreatedByUsername = u.username
	}
	s.movies[m.ID] = m
	return m
}

// AddRating seeds a rating and returns its id.
func (s *Server) AddRating(movieID, userID int64, score int, review string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRatingLocked(movieID, userID, domain.RatingInput{Rating: score, Review: review}).ID
}

func (s *Server) addRatingLocked(movieID, userID int64, in domain.RatingInput) *domain.Rating {
	s.nextID++
	now := s.now().UTC()
	r := &domain.Rating{
		ID:        s.nextID,
		Movie:     movieID,
		User:      userID,
		Rating:    in.Rating,
		Review:    in.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m := s.movies[movieID]; m != nil {
		r.MovieTitle = m.Title
	}
	if u := s.users[userID]; u != nil {
		r.UserUsername = u.username
	}
	s.ratings[r.ID] = r
	return r
}

// Rating returns a copy of a stored rating.
func (s *Server) Rating(id int64) (domain.Rating, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[id]
	if !ok {
		return domain.Rating{}, false
	}
	return *r, true
}

// RatingCount returns how many ratings are stored.
func (s *Server) RatingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

// movieView returns m with aggregates filled in. Caller holds mu.
func (s *Server) movieView(m *movie) domain.Movie {
	out := m.Movie
	sum := 0
	for _, r := range s.ratings {
		if r.Movie == m.ID {
			out.RatingsCount++
			sum += r.Rating
		}
	}
	if out.RatingsCount > 0 {
		out.RatingsAvg = float64(sum) / float64(out.RatingsCount)
	}
	return out
}

// ratingsWhere returns matching ratings, newest first. Caller holds mu.
func (s *Server) ratingsWhere(keep func(*domain.Rating) bool) []domain.Rating {
	out := []domain.Rating{}
	for _, r := range s.ratings {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
