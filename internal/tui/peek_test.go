package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/naveenspark/marquee/pkg/domain"
)

func newTestPeekModel() peekModel {
	m := newPeekModel(newFakeAPI())
	m, _ = m.load(3, "carol")
	m.width = 80
	return m
}

func TestPeekLoadSuccessShowsRatings(t *testing.T) {
	m := newTestPeekModel()
	m, _ = m.Update(peekLoadedMsg{gen: m.scope.gen, ratings: []domain.Rating{
		{ID: 1, Movie: 4, MovieTitle: "Alien", Rating: 5},
		{ID: 2, Movie: 5, MovieTitle: "Heat", Rating: 2},
	}})

	view := m.View()
	for _, want := range []string{"carol", "2 ratings", "3.5 average", "Alien", "Heat"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in peek view, got:\n%s", want, view)
		}
	}
}

func TestPeekLoadErrorShowsError(t *testing.T) {
	m := newTestPeekModel()
	m, _ = m.Update(peekLoadedMsg{gen: m.scope.gen, err: errors.New("user not found")})

	view := m.View()
	if !strings.Contains(view, "peek error") {
		t.Errorf("expected 'peek error' in view, got:\n%s", view)
	}
}

func TestPeekLoadingBeforeResult(t *testing.T) {
	m := newTestPeekModel()
	if !strings.Contains(m.View(), "loading...") {
		t.Errorf("expected loading, got:\n%s", m.View())
	}
}

func TestPeekEnterOpensMovie(t *testing.T) {
	m := newTestPeekModel()
	m, _ = m.Update(peekLoadedMsg{gen: m.scope.gen, ratings: []domain.Rating{
		{ID: 1, Movie: 4, MovieTitle: "Alien", Rating: 5},
		{ID: 2, Movie: 5, MovieTitle: "Heat", Rating: 2},
	}})
	m, _ = m.Update(keyMsg("j"))
	m, cmd := m.Update(keyMsg("enter"))
	if !m.closed {
		t.Error("peek should close when opening a movie")
	}
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.to != viewDetail || nav.movieID != 5 {
		t.Errorf("got %+v, want detail of movie 5", nav)
	}
}

func TestPeekEscCloses(t *testing.T) {
	for _, key := range []string{"esc", "q"} {
		m := newTestPeekModel()
		m, _ = m.Update(keyMsg(key))
		if !m.closed {
			t.Errorf("%s should close the peek", key)
		}
	}
}
