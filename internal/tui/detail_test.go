package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

var alice = &domain.Identity{ID: 1, Username: "alice"}

func newTestDetailModel(api *fakeAPI) detailModel {
	m := newDetailModel(api, "http://localhost:5173")
	m.openURL = func(string) error { return nil }
	m.copyText = func(string) error { return nil }
	m.me = alice
	m.width = 100
	m.height = 40
	return m
}

// runDetail feeds the messages cmd yields back into the model.
func runDetail(t *testing.T, m detailModel, cmd tea.Cmd) detailModel {
	t.Helper()
	for i := 0; i < 5 && cmd != nil; i++ {
		var next []tea.Cmd
		for _, msg := range drain(t, cmd) {
			var c tea.Cmd
			m, c = m.Update(msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func openDetail(t *testing.T, api *fakeAPI, id int64) detailModel {
	t.Helper()
	m, cmd := newTestDetailModel(api).open(id)
	return runDetail(t, m, cmd)
}

func TestDetailLoadsMovieAndRatingsInParallel(t *testing.T) {
	api := seededAPI()
	m, cmd := newTestDetailModel(api).open(1)
	if !m.loading() {
		t.Fatal("expected loading while both requests are pending")
	}
	msgs := drain(t, cmd)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 load messages, got %d", len(msgs))
	}
	m, _ = m.Update(msgs[0])
	if !m.loading() {
		t.Error("should stay loading until both requests complete")
	}
	m, _ = m.Update(msgs[1])
	if m.loading() {
		t.Error("should stop loading once both requests complete")
	}
}

func TestDetailShowsRatingsAndMarksMine(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)

	view := m.View()
	for _, want := range []string{"Alien (1979)", "alice", "(you)", "carol", "5/5 Excellent", "4/5 Very Good", "Your rating"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestDetailMyRatingMatchesByID(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)
	if mine := m.myRating(); mine == nil || mine.ID != 10 {
		t.Fatalf("myRating for user 1 = %+v, want rating 10", mine)
	}
	m.me = &domain.Identity{ID: 2, Username: "alice"}
	if mine := m.myRating(); mine != nil {
		t.Errorf("user 2 named alice matched rating %+v; ratings are matched by id", mine)
	}
}

func TestDetailNoRatingsMessage(t *testing.T) {
	api := seededAPI()
	api.ratings[1] = []domain.Rating{}
	m := openDetail(t, api, 1)

	view := m.View()
	if !strings.Contains(view, "No ratings yet. Be the first to rate this movie!") {
		t.Errorf("expected empty ratings message, got:\n%s", view)
	}
	if !strings.Contains(view, "rate this movie") {
		t.Errorf("expected rate hint for a new rating, got:\n%s", view)
	}
}

func TestDetailShowsUpdatedMarker(t *testing.T) {
	api := seededAPI()
	created := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	api.ratings[1][1].CreatedAt = created
	api.ratings[1][1].UpdatedAt = created.Add(48 * time.Hour)
	m := openDetail(t, api, 1)

	if !strings.Contains(m.View(), "Updated Jan") {
		t.Errorf("expected Updated marker, got:\n%s", m.View())
	}
}

func TestDetailRatingZeroSendsNothing(t *testing.T) {
	api := seededAPI()
	api.ratings[1] = nil
	m := openDetail(t, api, 1)

	m, _ = m.Update(keyMsg("e"))
	if !m.form.open {
		t.Fatal("e should open the rating form")
	}
	if !strings.Contains(m.View(), "Rate This Movie") {
		t.Errorf("expected create title, got:\n%s", m.View())
	}
	m, cmd := m.Update(keyMsg("ctrl+s"))
	if cmd != nil {
		t.Error("submitting without stars should not issue a request")
	}
	if !strings.Contains(m.View(), "Please select a rating") {
		t.Errorf("expected validation message, got:\n%s", m.View())
	}
	if api.called("RateMovie") != 0 {
		t.Error("RateMovie was called")
	}
}

func TestDetailCreateRating(t *testing.T) {
	api := seededAPI()
	api.ratings[1] = nil
	m := openDetail(t, api, 1)

	m, _ = m.Update(keyMsg("e"))
	m, _ = m.Update(keyMsg("4"))
	m, _ = m.Update(keyMsg("tab"))
	for _, r := range "  tense  " {
		m, _ = m.Update(keyMsg(string(r)))
	}
	m, cmd := m.Update(keyMsg("ctrl+s"))
	m = runDetail(t, m, cmd)

	if api.called("RateMovie") != 1 {
		t.Fatalf("RateMovie called %d times, want 1", api.called("RateMovie"))
	}
	if got := api.rated[0]; got.Rating != 4 || got.Review != "tense" {
		t.Errorf("sent %+v, want rating 4 with trimmed review", got)
	}
	if m.form.open || m.form.stars.value != 0 || m.form.review != "" {
		t.Errorf("form not reset after submit: %+v", m.form)
	}
	if api.called("GetMovie") != 2 {
		t.Errorf("detail should be refetched after rating, GetMovie called %d times", api.called("GetMovie"))
	}
	if !strings.Contains(m.View(), "Rating submitted!") {
		t.Errorf("expected confirmation, got:\n%s", m.View())
	}
}

func TestDetailUpdateExistingRating(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)

	m, _ = m.Update(keyMsg("e"))
	if m.form.stars.value != 5 {
		t.Errorf("form should start from my rating, got %d", m.form.stars.value)
	}
	if !strings.Contains(m.View(), "Update Your Rating") {
		t.Errorf("expected update title, got:\n%s", m.View())
	}
	m, _ = m.Update(keyMsg("h"))
	m, cmd := m.Update(keyMsg("enter"))
	m = runDetail(t, m, cmd)

	if api.called("UpdateRating") != 1 || api.called("RateMovie") != 0 {
		t.Errorf("UpdateRating=%d RateMovie=%d, want 1 and 0", api.called("UpdateRating"), api.called("RateMovie"))
	}
	if api.rated[0].Rating != 4 {
		t.Errorf("sent rating %d, want 4", api.rated[0].Rating)
	}
	if !strings.Contains(m.View(), "Rating updated!") {
		t.Errorf("expected update confirmation, got:\n%s", m.View())
	}
}

func TestDetailSaveErrorShownInForm(t *testing.T) {
	api := seededAPI()
	api.ratings[1] = nil
	m := openDetail(t, api, 1)
	m, _ = m.Update(keyMsg("e"))
	m, _ = m.Update(keyMsg("3"))
	m, _ = m.Update(ratingSavedMsg{gen: m.scope.gen, err: &client.HTTPError{StatusCode: 400, Message: "You have already rated this movie."}})

	if !m.form.open {
		t.Error("form should stay open on error")
	}
	if !strings.Contains(m.View(), "You have already rated this movie.") {
		t.Errorf("expected backend message, got:\n%s", m.View())
	}
}

func TestDetailDeleteMyRating(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)
	m, cmd := m.Update(keyMsg("d"))
	m = runDetail(t, m, cmd)
	if api.called("DeleteRating") != 1 {
		t.Errorf("DeleteRating called %d times, want 1", api.called("DeleteRating"))
	}
	if !strings.Contains(m.View(), "Rating deleted.") {
		t.Errorf("expected confirmation, got:\n%s", m.View())
	}
}

func TestDetailDeleteMovieNeedsOwnerAndConfirm(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)

	m, cmd := m.Update(keyMsg("D"))
	if cmd != nil || !m.confirmDelete {
		t.Fatal("first D should ask for confirmation")
	}
	_, cmd = m.Update(keyMsg("D"))
	msgs := drain(t, cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected delete result, got %v", msgs)
	}
	m, cmd = m.Update(msgs[0])
	nav, ok := drain(t, cmd)[0].(navigateMsg)
	if !ok || nav.to != viewMovies || !strings.Contains(nav.flash, "Alien") {
		t.Errorf("got %+v, want navigation back to movies", nav)
	}

	// Not the owner.
	m = openDetail(t, api, 1)
	m.me = &domain.Identity{ID: 3, Username: "carol"}
	m, _ = m.Update(keyMsg("D"))
	if m.confirmDelete {
		t.Error("non-owner was offered movie deletion")
	}
}

func TestDetailCopyAndOpen(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)
	var copied, opened string
	m.copyText = func(s string) error { copied = s; return nil }
	m.openURL = func(s string) error { opened = s; return nil }

	m, _ = m.Update(keyMsg("c"))
	if copied != "Alien (1979) ★4.5" {
		t.Errorf("copied %q", copied)
	}
	m, _ = m.Update(keyMsg("o"))
	if opened != "http://localhost:5173/movies/1" {
		t.Errorf("opened %q", opened)
	}
	m.copyText = func(string) error { return errors.New("no clipboard") }
	m, _ = m.Update(keyMsg("c"))
	if !strings.Contains(m.View(), "copy failed") {
		t.Errorf("expected copy failure notice, got:\n%s", m.View())
	}
}

func TestDetailPeekAuthor(t *testing.T) {
	api := seededAPI()
	m := openDetail(t, api, 1)
	m, _ = m.Update(keyMsg("j"))
	_, cmd := m.Update(keyMsg("p"))
	if cmd == nil {
		t.Fatal("expected peek command")
	}
	peek, ok := cmd().(showPeekMsg)
	if !ok || peek.userID != 3 || peek.username != "carol" {
		t.Errorf("got %+v, want carol", peek)
	}
}

func TestDetailLoadErrorOffersRetry(t *testing.T) {
	m := newTestDetailModel(seededAPI())
	m, _ = m.open(1)
	m, _ = m.Update(detailLoadedMsg{gen: m.scope.gen, err: &client.HTTPError{StatusCode: 404, Message: "Not found."}})

	view := m.View()
	if !strings.Contains(view, "Not found.") || !strings.Contains(view, "retry") {
		t.Errorf("expected error with retry, got:\n%s", view)
	}
}

func TestDetailReloadDuringLoadWaitsForNewestPair(t *testing.T) {
	api := seededAPI()
	m, first := newTestDetailModel(api).open(1)
	firstMsgs := drain(t, first)

	m, second := m.Update(keyMsg("r"))
	for _, msg := range firstMsgs {
		m, _ = m.Update(msg)
	}
	if !m.loading() || m.pending != 2 {
		t.Fatalf("superseded responses counted: pending = %d, loading = %v", m.pending, m.loading())
	}

	secondMsgs := drain(t, second)
	if len(secondMsgs) != 2 {
		t.Fatalf("expected 2 load messages, got %d", len(secondMsgs))
	}
	m, _ = m.Update(secondMsgs[0])
	if !m.loading() {
		t.Error("left loading before the ratings arrived")
	}
	m, _ = m.Update(secondMsgs[1])
	if m.loading() || m.pending != 0 {
		t.Errorf("pending = %d after both responses, want 0", m.pending)
	}
}

func TestDetailFailedReloadKeepsMovieAndShowsError(t *testing.T) {
	m := openDetail(t, seededAPI(), 1)
	m, _ = m.Update(keyMsg("r"))
	m, _ = m.Update(detailLoadedMsg{gen: m.scope.gen, err: &client.HTTPError{StatusCode: 503, Message: "Service unavailable."}})

	view := m.View()
	if !strings.Contains(view, "Alien (1979)") {
		t.Errorf("loaded movie should stay on screen, got:\n%s", view)
	}
	if !strings.Contains(view, "Service unavailable.") {
		t.Errorf("reload failure not shown, got:\n%s", view)
	}
}
