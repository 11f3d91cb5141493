package apitest

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/naveenspark/marquee/pkg/domain"
)

type registerBody struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerBody
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}
	fields := map[string][]string{}
	if in.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if in.Email == "" {
		fields["email"] = []string{"This field is required."}
	}
	if in.Password1 != in.Password2 {
		fields["non_field_errors"] = []string{"The two password fields didn't match."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.email, in.Email) {
			fields["email"] = []string{"A user is already registered with this e-mail address."}
		}
		if u.username == in.Username {
			fields["username"] = []string{"A user with that username already exists."}
		}
	}
	if len(fields) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, fields)
		return
	}

	u := s.addUserLocked(in.Username, in.Email, in.Password1)
	toks, err := s.issueLocked(u)
	if err != nil {
		fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toks)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.email, in.Email) && u.password == in.Password {
			toks, err := s.issueLocked(u)
			if err != nil {
				fail(w, r, http.StatusInternalServerError, err.Error())
				return
			}
			render.JSON(w, r, toks)
			return
		}
	}
	fail(w, r, http.StatusUnauthorized, "No active account found with the given credentials")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	c, err := s.parse(in.Refresh, "refresh")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || s.failRefresh || s.revoked[c.ID] {
		fail(w, r, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	u := s.users[c.UserID]
	if u == nil {
		fail(w, r, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	access, err := s.signLocked(u, "access", accessTTL)
	if err != nil {
		fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, map[string]string{"access": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = render.DecodeJSON(r.Body, &in)
	if in.Refresh != "" {
		if c, err := s.parse(in.Refresh, "refresh"); err == nil {
			s.mu.Lock()
			s.revoked[c.ID] = true
			s.mu.Unlock()
		}
	}
	render.JSON(w, r, map[string]string{"detail": "Successfully logged out."})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), domain.DefaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = domain.DefaultLimit
	}
	genre := q.Get("genre")
	search := strings.ToLower(q.Get("search"))
	minYear := atoiDefault(q.Get("min_year"), 0)
	maxYear := atoiDefault(q.Get("max_year"), 0)

	s.mu.Lock()
	var matched []domain.Movie
	for _, m := range s.movies {
		switch {
		case genre != "" && m.Genre != genre:
			continue
		case search != "" && !strings.Contains(strings.ToLower(m.Title), search):
			continue
		case minYear != 0 && m.ReleaseYear < minYear:
			continue
		case maxYear != 0 && m.ReleaseYear > maxYear:
			continue
		}
		matched = append(matched, s.movieView(m))
	}
	s.mu.Unlock()

	sortMovies(matched)
	total := len(matched)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	render.JSON(w, r, domain.Page[domain.Movie]{
		Items:       append([]domain.Movie{}, matched[start:end]...),
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.movies[id]
	if m == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	render.JSON(w, r, domain.MovieDetail{
		Movie:         s.movieView(m),
		CreatedBy:     m.createdBy,
		RecentRatings: s.ratingsWhere(func(x *domain.Rating) bool { return x.Movie == id }),
	})
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var in domain.MovieInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string][]string{"title": {"This field is required."}})
		return
	}
	if !domain.ValidGenre(in.Genre) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string][]string{"genre": {"\"" + in.Genre + "\" is not a valid choice."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.addMovieLocked(in, currentUser(r).id)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, s.movieView(m))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.movies[id]
	if m == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	if m.createdBy != currentUser(r).id {
		fail(w, r, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	delete(s.movies, id)
	for rid, rt := range s.ratings {
		if rt.Movie == id {
			delete(s.ratings, rid)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.RatingInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string][]string{"rating": {"Ensure this value is between 1 and 5."}})
		return
	}

	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.movies[id]
	if m == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	for _, existing := range s.ratings {
		if existing.Movie == id && existing.User == u.id {
			fail(w, r, http.StatusBadRequest, "You have already rated this movie.")
			return
		}
	}
	rt := s.addRatingLocked(id, u.id, in)
	view := s.movieView(m)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, domain.RatingResponse{
		Rating: *rt,
		Movie: domain.MovieSummary{
			ID:           view.ID,
			Title:        view.Title,
			RatingsCount: view.RatingsCount,
			RatingsAvg:   view.RatingsAvg,
		},
	})
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in domain.RatingInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string][]string{"rating": {"Ensure this value is between 1 and 5."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.ratings[id]
	if rt == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	if rt.User != currentUser(r).id {
		fail(w, r, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	rt.Rating = in.Rating
	rt.Review = in.Review
	rt.UpdatedAt = s.now().UTC()
	render.JSON(w, r, rt)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.ratings[id]
	if rt == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	if rt.User != currentUser(r).id {
		fail(w, r, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}
	delete(s.ratings, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMovieRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.movies[id] == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	render.JSON(w, r, s.ratingsWhere(func(x *domain.Rating) bool { return x.Movie == id }))
}

func (s *Server) handleMyRatings(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r).id
	s.mu.Lock()
	defer s.mu.Unlock()
	render.JSON(w, r, s.ratingsWhere(func(x *domain.Rating) bool { return x.User == uid }))
}

func (s *Server) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[id] == nil {
		fail(w, r, http.StatusNotFound, "Not found.")
		return
	}
	render.JSON(w, r, s.ratingsWhere(func(x *domain.Rating) bool { return x.User == id }))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		fail(w, r, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// sortMovies orders newest first, then by id for a stable page order.
func sortMovies(ms []domain.Movie) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.After(ms[j].CreatedAt)
		}
		return ms[i].ID > ms[j].ID
	})
}
