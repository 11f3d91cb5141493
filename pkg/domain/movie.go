package domain

import (
	"fmt"
	"math"
	"time"
)

// Movie is a catalogue entry as returned by the list endpoint.
type Movie struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Genre             string    `json:"genre"`
	ReleaseYear       int       `json:"release_year"`
	Description       string    `json:"description,omitempty"`
	RatingsCount      int       `json:"ratings_count,omitempty"`
	RatingsAvg        float64   `json:"ratings_avg,omitempty"`
	CreatedByUsername string    `json:"created_by_username,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Label renders "Title (Year)".
func (m Movie) Label() string {
	if m.ReleaseYear == 0 {
		return m.Title
	}
	return fmt.Sprintf("%s (%d)", m.Title, m.ReleaseYear)
}

// RoundedAvg is the average rounded to the nearest whole star.
func (m Movie) RoundedAvg() int {
	return int(math.Round(m.RatingsAvg))
}

// MovieDetail is a movie plus its most recent ratings.
type MovieDetail struct {
	Movie
	CreatedBy     int64    `json:"created_by,omitempty"`
	RecentRatings []Rating `json:"recent_ratings"`
}

// OwnedBy reports whether the identity created the movie.
func (d MovieDetail) OwnedBy(id *Identity) bool {
	return id != nil && id.ID != 0 && d.CreatedBy == id.ID
}

// MovieInput is the body of a create-movie request.
type MovieInput struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseYear int    `json:"release_year"`
	Description string `json:"description,omitempty"`
}

// Genres the backend accepts.
var Genres = []string{
	"Action",
	"Comedy",
	"Drama",
	"Horror",
	"Sci-Fi",
	"Romance",
	"Thriller",
	"Fantasy",
	"Documentary",
	"Other",
}

var genreSet = func() map[string]bool {
	m := make(map[string]bool, len(Genres))
	for _, g := range Genres {
		m[g] = true
	}
	return m
}()

// ValidGenre returns true if the given genre is known.
func ValidGenre(genre string) bool {
	return genreSet[genre]
}
