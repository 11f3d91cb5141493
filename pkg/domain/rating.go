package domain

import "time"

// Rating is one user's score and optional review of a movie.
type Rating struct {
	ID           int64     `json:"id"`
	Movie        int64     `json:"movie"`
	MovieTitle   string    `json:"movie_title"`
	User         int64     `json:"user"`
	UserUsername string    `json:"user_username"`
	Rating       int       `json:"rating"`
	Review       string    `json:"review,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Edited reports whether the rating changed after it was created.
func (r Rating) Edited() bool {
	return !r.UpdatedAt.IsZero() && !r.UpdatedAt.Equal(r.CreatedAt)
}

// RatingInput is the body of a rate or update-rating request.
// An empty review is omitted from the payload.
type RatingInput struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

// MovieSummary is the aggregate returned alongside a new rating.
type MovieSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	RatingsCount int     `json:"ratings_count"`
	RatingsAvg   float64 `json:"ratings_avg"`
}

// RatingResponse is returned by the rate-movie endpoint.
type RatingResponse struct {
	Rating Rating       `json:"rating"`
	Movie  MovieSummary `json:"movie"`
}

// MyRating returns the rating in ratings authored by id, matched on the
// numeric user id. It returns nil when id is nil, has no numeric id, or
// authored none of them.
func MyRating(ratings []Rating, id *Identity) *Rating {
	if id == nil || id.ID == 0 {
		return nil
	}
	for i := range ratings {
		if ratings[i].User == id.ID {
			return &ratings[i]
		}
	}
	return nil
}
