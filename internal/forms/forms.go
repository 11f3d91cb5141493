package forms

import (
	"strings"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// Login is the login form.
type Login struct {
	Email    string `json:"email" validate:"required,email" errorMsg:"required=Email is required;email=Email is invalid"`
	Password string `json:"password" validate:"required,min=6" errorMsg:"required=Password is required;min=Password must be at least 6 characters"`
}

// Validate trims the email and checks every field.
func (f *Login) Validate() Errors {
	f.Email = strings.TrimSpace(f.Email)
	return Check(f)
}

// Register is the account creation form.
type Register struct {
	Username  string `json:"username" validate:"required,min=3" errorMsg:"required=Username is required;min=Username must be at least 3 characters"`
	Email     string `json:"email" validate:"required,email" errorMsg:"required=Email is required;email=Email is invalid"`
	Password1 string `json:"password1" validate:"required,min=6" errorMsg:"required=Password is required;min=Password must be at least 6 characters"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1" errorMsg:"required=Please confirm your password;eqfield=Passwords do not match"`
}

func (f *Register) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return Check(f)
}

// Request converts the form into an API payload.
func (f Register) Request() client.RegisterRequest {
	return client.RegisterRequest{
		Username:  f.Username,
		Email:     f.Email,
		Password1: f.Password1,
		Password2: f.Password2,
	}
}

// Movie is the add-movie form.
type Movie struct {
	Title       string `json:"title" validate:"required,min=2" errorMsg:"required=Title is required;min=Title must be at least 2 characters"`
	Genre       string `json:"genre" validate:"required,genre" errorMsg:"required=Genre is required;genre=Genre is invalid"`
	ReleaseYear int    `json:"release_year" validate:"required,releaseyear" errorMsg:"required=Release year is required"`
	Description string `json:"description"`
}

func (f *Movie) Validate() Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	return Check(f)
}

// Input converts the form into an API payload.
func (f Movie) Input() domain.MovieInput {
	return domain.MovieInput{
		Title:       f.Title,
		Genre:       f.Genre,
		ReleaseYear: f.ReleaseYear,
		Description: f.Description,
	}
}

// Rating is the rate-a-movie form. A zero rating means no star was picked.
type Rating struct {
	Rating int    `json:"rating" validate:"gte=1,lte=5" errorMsg:"Please select a rating"`
	Review string `json:"review"`
}

func (f *Rating) Validate() Errors {
	f.Review = strings.TrimSpace(f.Review)
	return Check(f)
}

// Input converts the form into an API payload; an empty review is left
// out.
func (f Rating) Input() domain.RatingInput {
	return domain.RatingInput{Rating: f.Rating, Review: f.Review}
}
