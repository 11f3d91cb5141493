package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/marquee/pkg/domain"
)

// ListMovies fetches one page of movies matching f.
func (c *Client) ListMovies(ctx context.Context, f domain.SearchFilters) (*domain.Page[domain.Movie], error) {
	path := "/movies/"
	if q := f.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page domain.Page[domain.Movie]
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("client.ListMovies: %w", err)
	}
	if err := page.Valid(); err != nil {
		c.log.Warn().Err(err).Msg("inconsistent movie page")
	}
	return &page, nil
}

// GetMovie fetches a movie with its recent ratings.
func (c *Client) GetMovie(ctx context.Context, id int64) (*domain.MovieDetail, error) {
	var d domain.MovieDetail
	if err := c.get(ctx, fmt.Sprintf("/movies/%d/", id), &d); err != nil {
		return nil, fmt.Errorf("client.GetMovie: %w", err)
	}
	return &d, nil
}

// CreateMovie adds a movie to the catalogue.
func (c *Client) CreateMovie(ctx context.Context, in domain.MovieInput) (*domain.Movie, error) {
	var m domain.Movie
	if err := c.post(ctx, "/movies/add/", in, &m); err != nil {
		return nil, fmt.Errorf("client.CreateMovie: %w", err)
	}
	return &m, nil
}

// DeleteMovie removes a movie.
func (c *Client) DeleteMovie(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/movies/%d/", id)); err != nil {
		return fmt.Errorf("client.DeleteMovie: %w", err)
	}
	return nil
}

// RateMovie submits the caller's first rating of a movie.
func (c *Client) RateMovie(ctx context.Context, movieID int64, in domain.RatingInput) (*domain.RatingResponse, error) {
	var r domain.RatingResponse
	if err := c.post(ctx, fmt.Sprintf("/movies/%d/ratings/", movieID), in, &r); err != nil {
		return nil, fmt.Errorf("client.RateMovie: %w", err)
	}
	return &r, nil
}

// UpdateRating replaces the score and review of an existing rating.
func (c *Client) UpdateRating(ctx context.Context, ratingID int64, in domain.RatingInput) (*domain.Rating, error) {
	var r domain.Rating
	if err := c.put(ctx, fmt.Sprintf("/ratings/%d/", ratingID), in, &r); err != nil {
		return nil, fmt.Errorf("client.UpdateRating: %w", err)
	}
	return &r, nil
}

// DeleteRating removes a rating.
func (c *Client) DeleteRating(ctx context.Context, ratingID int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/ratings/%d/", ratingID)); err != nil {
		return fmt.Errorf("client.DeleteRating: %w", err)
	}
	return nil
}

// ListMovieRatings returns every rating of a movie.
func (c *Client) ListMovieRatings(ctx context.Context, movieID int64) ([]domain.Rating, error) {
	var rs []domain.Rating
	if err := c.get(ctx, fmt.Sprintf("/movies/%d/ratings/", movieID), &rs); err != nil {
		return nil, fmt.Errorf("client.ListMovieRatings: %w", err)
	}
	return rs, nil
}

// ListMyRatings returns the authenticated user's ratings.
func (c *Client) ListMyRatings(ctx context.Context) ([]domain.Rating, error) {
	var rs []domain.Rating
	if err := c.get(ctx, "/user/ratings/", &rs); err != nil {
		return nil, fmt.Errorf("client.ListMyRatings: %w", err)
	}
	return rs, nil
}

// ListUserRatings returns the ratings authored by another user.
func (c *Client) ListUserRatings(ctx context.Context, userID int64) ([]domain.Rating, error) {
	var rs []domain.Rating
	if err := c.get(ctx, fmt.Sprintf("/users/%d/ratings/", userID), &rs); err != nil {
		return nil, fmt.Errorf("client.ListUserRatings: %w", err)
	}
	return rs, nil
}
