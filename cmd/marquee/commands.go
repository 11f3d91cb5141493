package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/marquee/internal/forms"
	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

var (
	okColor    = color.New(color.FgGreen)
	errColor   = color.New(color.FgRed)
	dimColor   = color.New(color.FgHiBlack)
	starColor  = color.New(color.FgYellow)
	titleColor = color.New(color.Bold)
)

// prompter reads answers line by line from the command's input.
type prompter struct {
	out io.Writer
	sc  *bufio.Scanner
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{out: out, sc: bufio.NewScanner(in)}
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", label, err)
		}
		return "", fmt.Errorf("read %s: %w", label, io.ErrUnexpectedEOF)
	}
	return strings.TrimRight(p.sc.Text(), "\r"), nil
}

// formError prints every field message and returns a summary error.
func formError(out io.Writer, errs forms.Errors) error {
	for _, k := range slices.Sorted(maps.Keys(errs)) {
		errColor.Fprintf(out, "  %s: %s\n", k, errs[k]) //nolint:errcheck // terminal output
	}
	return errors.New("invalid input")
}

func (a *app) runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if id := a.sess.Identity(); id != nil {
		fmt.Fprintf(a.out, "Already signed in as %s. Run marquee logout first.\n", id.DisplayName())
		return nil
	}

	p := newPrompter(a.in, a.out)
	f := forms.Login{Email: *email, Password: *password}
	var err error
	if f.Email == "" {
		if f.Email, err = p.ask("Email"); err != nil {
			return err
		}
	}
	if f.Password == "" {
		if f.Password, err = p.ask("Password"); err != nil {
			return err
		}
	}
	if errs := f.Validate(); errs != nil {
		return formError(a.out, errs)
	}

	id, err := a.sess.Login(context.Background(), f.Email, f.Password)
	if err != nil {
		return errors.New(client.Message(err))
	}
	okColor.Fprintf(a.out, "Signed in as %s\n", id.DisplayName()) //nolint:errcheck // terminal output
	return nil
}

func (a *app) runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id := a.sess.Identity(); id != nil {
		fmt.Fprintf(a.out, "Already signed in as %s. Run marquee logout first.\n", id.DisplayName())
		return nil
	}

	p := newPrompter(a.in, a.out)
	var f forms.Register
	for _, q := range []struct {
		label string
		dst   *string
	}{
		{"Username", &f.Username},
		{"Email", &f.Email},
		{"Password", &f.Password1},
		{"Confirm password", &f.Password2},
	} {
		v, err := p.ask(q.label)
		if err != nil {
			return err
		}
		*q.dst = v
	}
	if errs := f.Validate(); errs != nil {
		return formError(a.out, errs)
	}

	id, err := a.sess.Register(context.Background(), f.Request())
	if err != nil {
		if fe := client.FieldErrors(err); len(fe) > 0 {
			return formError(a.out, forms.Errors(fe))
		}
		return errors.New(client.Message(err))
	}
	okColor.Fprintf(a.out, "Welcome, %s! You are signed in.\n", id.DisplayName()) //nolint:errcheck // terminal output
	return nil
}

func (a *app) runLogout() error {
	if !a.sess.Authenticated() {
		fmt.Fprintln(a.out, "Already logged out.")
		return nil
	}
	if err := a.sess.Logout(context.Background()); err != nil {
		// Local tokens are gone either way.
		a.log.Warn().Err(err).Msg("backend logout failed")
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) runWhoami() error {
	id := a.sess.Identity()
	if id == nil {
		printGreeting(a.out)
		return nil
	}
	fmt.Fprintf(a.out, "%s", titleColor.Sprint(id.DisplayName()))
	if id.Email != "" && id.Email != id.DisplayName() {
		fmt.Fprintf(a.out, " <%s>", id.Email)
	}
	if id.ID != 0 {
		fmt.Fprintf(a.out, " (user %d)", id.ID)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) runMovies(args []string) error {
	fs := flag.NewFlagSet("movies", flag.ContinueOnError)
	fs.SetOutput(a.out)
	genre := fs.String("genre", "", "only this genre")
	search := fs.String("search", "", "title contains")
	minYear := fs.Int("min-year", 0, "released in or after")
	maxYear := fs.Int("max-year", 0, "released in or before")
	page := fs.Int("page", domain.DefaultPage, "page number")
	limit := fs.Int("limit", a.cfg.PageSize, "movies per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *genre != "" && !domain.ValidGenre(*genre) {
		return fmt.Errorf("unknown genre %q (one of: %s)", *genre, strings.Join(domain.Genres, ", "))
	}

	f := domain.DefaultFilters().
		WithLimit(*limit).
		WithGenre(*genre).
		WithSearch(*search).
		WithMinYear(*minYear).
		WithMaxYear(*maxYear).
		WithPage(*page)

	res, err := a.api.ListMovies(context.Background(), f)
	if err != nil {
		return errors.New(client.Message(err))
	}
	if len(res.Items) == 0 {
		fmt.Fprintln(a.out, "No movies found. Try adjusting your filters.")
		return nil
	}
	for _, m := range res.Items {
		fmt.Fprintf(a.out, "%s  %-40s %-12s %s\n",
			dimColor.Sprintf("#%-4d", m.ID), truncate(m.Label(), 40), m.Genre, ratingSummary(m))
	}
	if res.Paginated() {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, dimColor.Sprint(res.Summary()))
	}
	return nil
}

func (a *app) runShow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: marquee show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var (
		movie   *domain.MovieDetail
		ratings []domain.Rating
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		movie, err = a.api.GetMovie(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = a.api.ListMovieRatings(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.New(client.Message(err))
	}

	fmt.Fprintf(a.out, "%s  %s\n", titleColor.Sprint(movie.Label()), movie.Genre)
	fmt.Fprintln(a.out, ratingSummary(movie.Movie))
	if movie.CreatedByUsername != "" {
		fmt.Fprintln(a.out, dimColor.Sprintf("added by %s", movie.CreatedByUsername))
	}
	if movie.Description != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, movie.Description)
	}

	fmt.Fprintln(a.out)
	if len(ratings) == 0 {
		fmt.Fprintln(a.out, "No ratings yet. Be the first to rate this movie!")
		return nil
	}
	me := a.sess.Identity()
	mine := domain.MyRating(ratings, me)
	for _, r := range ratings {
		name := r.UserUsername
		if mine != nil && r.ID == mine.ID {
			name += " (you)"
		}
		line := fmt.Sprintf("%s  %s", starColor.Sprint(starString(r.Rating)), name)
		if r.Edited() {
			line += dimColor.Sprintf("  Updated %s", r.UpdatedAt.Local().Format("Jan 2, 2006"))
		}
		fmt.Fprintln(a.out, line)
		if r.Review != "" {
			fmt.Fprintln(a.out, "    "+r.Review)
		}
	}
	return nil
}

func (a *app) runRate(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: marquee rate <id> <1-5> [review]")
	}
	if _, err := a.sess.Require(); err != nil {
		return errors.New("you must be logged in to rate a movie (run marquee login)")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(args[1])
	if err != nil {
		score = 0
	}
	f := forms.Rating{Rating: score, Review: strings.Join(args[2:], " ")}
	if errs := f.Validate(); errs != nil {
		return formError(a.out, errs)
	}

	ctx := context.Background()
	ratings, err := a.api.ListMovieRatings(ctx, id)
	if err != nil {
		return errors.New(client.Message(err))
	}
	if mine := domain.MyRating(ratings, a.sess.Identity()); mine != nil {
		if _, err := a.api.UpdateRating(ctx, mine.ID, f.Input()); err != nil {
			return errors.New(client.Message(err))
		}
		okColor.Fprintln(a.out, "Rating updated!") //nolint:errcheck // terminal output
		return nil
	}
	res, err := a.api.RateMovie(ctx, id, f.Input())
	if err != nil {
		return errors.New(client.Message(err))
	}
	okColor.Fprintf(a.out, "Rating submitted! %s now averages %.1f from %d rating(s).\n", //nolint:errcheck // terminal output
		res.Movie.Title, res.Movie.RatingsAvg, res.Movie.RatingsCount)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid movie id %q", s)
	}
	return id, nil
}

func starString(n int) string {
	n = min(max(n, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func ratingSummary(m domain.Movie) string {
	if m.RatingsCount == 0 {
		return dimColor.Sprint("no ratings")
	}
	return fmt.Sprintf("%s %.1f (%d)", starColor.Sprint(starString(m.RoundedAvg())), m.RatingsAvg, m.RatingsCount)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
