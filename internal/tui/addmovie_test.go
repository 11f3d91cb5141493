package tui

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

func newTestAddMovieModel(api *fakeAPI) addMovieModel {
	m := newAddMovieModel(api)
	m, _ = m.Init()
	return m
}

func typeInto(m addMovieModel, text string) addMovieModel {
	for _, r := range text {
		m, _ = m.Update(keyMsg(string(r)))
	}
	return m
}

func TestAddMovieDefaults(t *testing.T) {
	m := newTestAddMovieModel(newFakeAPI())
	if m.fields[addYear] != strconv.Itoa(time.Now().Year()) {
		t.Errorf("default year = %q, want current year", m.fields[addYear])
	}
	if m.fields[addGenre] != domain.Genres[0] {
		t.Errorf("default genre = %q", m.fields[addGenre])
	}
}

func TestAddMovieValidationInline(t *testing.T) {
	api := newFakeAPI()
	m := newTestAddMovieModel(api)
	m = typeInto(m, "A")
	m, _ = m.Update(keyMsg("tab"))
	m, _ = m.Update(keyMsg("tab"))
	for i := 0; i < 4; i++ {
		m, _ = m.Update(keyMsg("backspace"))
	}
	m = typeInto(m, "1800")
	m, cmd := m.Update(keyMsg("ctrl+s"))

	if cmd != nil {
		t.Error("invalid form should not submit")
	}
	view := m.View()
	for _, want := range []string{"Title must be at least 2 characters", "Release year must be between 1900"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q, got:\n%s", want, view)
		}
	}
	if api.called("CreateMovie") != 0 {
		t.Error("CreateMovie was called")
	}
}

func TestAddMovieGenreCycles(t *testing.T) {
	m := newTestAddMovieModel(newFakeAPI())
	m, _ = m.Update(keyMsg("tab"))
	m, _ = m.Update(keyMsg("l"))
	if m.fields[addGenre] != domain.Genres[1] {
		t.Errorf("genre = %q, want %q", m.fields[addGenre], domain.Genres[1])
	}
	m, _ = m.Update(keyMsg("h"))
	m, _ = m.Update(keyMsg("h"))
	if m.fields[addGenre] != domain.Genres[len(domain.Genres)-1] {
		t.Errorf("genre = %q, want wrap to last", m.fields[addGenre])
	}
}

func TestAddMovieYearDigitsOnly(t *testing.T) {
	m := newTestAddMovieModel(newFakeAPI())
	m.focus = addYear
	m = typeInto(m, "x")
	if m.fields[addYear] != strconv.Itoa(time.Now().Year()) {
		t.Errorf("year accepted a letter: %q", m.fields[addYear])
	}
}

func TestAddMovieSubmitNavigatesWithFlash(t *testing.T) {
	api := newFakeAPI()
	m := newTestAddMovieModel(api)
	m = typeInto(m, "Arrival")
	m.fields[addGenre] = "Sci-Fi"
	m, cmd := m.Update(keyMsg("ctrl+s"))
	if cmd == nil || !m.submitting {
		t.Fatal("valid form should submit")
	}
	msgs := drain(t, cmd)
	m, cmd = m.Update(msgs[0])
	if api.called("CreateMovie") != 1 {
		t.Errorf("CreateMovie called %d times", api.called("CreateMovie"))
	}
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.to != viewMovies || !strings.Contains(nav.flash, "Movie added successfully!") {
		t.Errorf("got %+v, want movies with success flash", nav)
	}
	if m.fields[addTitle] != "" {
		t.Error("form should reset after success")
	}
}

func TestAddMovieServerFieldErrors(t *testing.T) {
	m := newTestAddMovieModel(newFakeAPI())
	m, _ = m.Update(movieCreatedMsg{gen: m.scope.gen, err: &client.HTTPError{
		StatusCode: 400,
		Message:    "title: movie with this title already exists.",
		Fields:     map[string]string{"title": "movie with this title already exists."},
	}})
	view := m.View()
	if !strings.Contains(view, "movie with this title already exists.") {
		t.Errorf("expected field error, got:\n%s", view)
	}
}
