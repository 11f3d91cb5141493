package tui

import (
	"context"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// API is the movie and rating surface the screens call.
type API interface {
	ListMovies(ctx context.Context, f domain.SearchFilters) (*domain.Page[domain.Movie], error)
	GetMovie(ctx context.Context, id int64) (*domain.MovieDetail, error)
	CreateMovie(ctx context.Context, in domain.MovieInput) (*domain.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
	RateMovie(ctx context.Context, movieID int64, in domain.RatingInput) (*domain.RatingResponse, error)
	UpdateRating(ctx context.Context, ratingID int64, in domain.RatingInput) (*domain.Rating, error)
	DeleteRating(ctx context.Context, ratingID int64) error
	ListMovieRatings(ctx context.Context, movieID int64) ([]domain.Rating, error)
	ListMyRatings(ctx context.Context) ([]domain.Rating, error)
	ListUserRatings(ctx context.Context, userID int64) ([]domain.Rating, error)
}

// Session is the login state the app observes and drives.
type Session interface {
	Identity() *domain.Identity
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, r client.RegisterRequest) (*domain.Identity, error)
	Logout(ctx context.Context) error
}

// IdentityChangedMsg tells the app the session changed outside of its own
// actions, e.g. a failed token refresh logged the user out.
type IdentityChangedMsg struct {
	Identity *domain.Identity
}
