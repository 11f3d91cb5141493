package tui

import (
	"strings"
	"testing"
)

func TestGenreStyleKnownGenre(t *testing.T) {
	genres := []string{"Action", "Comedy", "Drama", "Sci-Fi", "Documentary"}
	for _, g := range genres {
		t.Run(g, func(t *testing.T) {
			if _, ok := genreColors[g]; !ok {
				t.Fatalf("genreColors missing %q", g)
			}
			out := GenreStyle(g).Render(g)
			if !strings.Contains(out, g) {
				t.Errorf("GenreStyle(%q).Render did not contain genre, got %q", g, out)
			}
		})
	}
}

func TestGenreStyleUnknownGenreFallback(t *testing.T) {
	out := GenreStyle("Western").Render("Western")
	if !strings.Contains(out, "Western") {
		t.Errorf("fallback style lost content: %q", out)
	}
}

func TestShimmerLogoSpellsName(t *testing.T) {
	for _, frame := range []int{0, 7, 100} {
		out := renderShimmerLogo(frame)
		for _, ch := range "MARQUEE" {
			if !strings.ContainsRune(out, ch) {
				t.Errorf("frame %d: logo missing %q", frame, ch)
			}
		}
	}
}

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") {
		t.Errorf("helpEntry('q','quit') does not contain key 'q': %q", result)
	}
	if !strings.Contains(result, "quit") {
		t.Errorf("helpEntry('q','quit') does not contain label 'quit': %q", result)
	}
}

func TestHelpEntryMultipleKeys(t *testing.T) {
	tests := []struct {
		key   string
		label string
	}{
		{"j/k", "nav"},
		{"enter", "open"},
		{"esc", "cancel"},
		{"ctrl+s", "submit"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			result := helpEntry(tc.key, tc.label)
			if !strings.Contains(result, tc.key) {
				t.Errorf("helpEntry(%q, %q) missing key", tc.key, tc.label)
			}
			if !strings.Contains(result, tc.label) {
				t.Errorf("helpEntry(%q, %q) missing label", tc.key, tc.label)
			}
		})
	}
}

func TestHelpBarPairs(t *testing.T) {
	out := helpBar("r", "retry", "c", "clear filters")
	for _, want := range []string{"retry", "clear filters"} {
		if !strings.Contains(out, want) {
			t.Errorf("helpBar missing %q: %q", want, out)
		}
	}
}

func TestHelpViewLinksOnlyWithWebURL(t *testing.T) {
	withLinks := helpView(0, "http://localhost:5173")
	if !strings.Contains(withLinks, "Links") {
		t.Errorf("expected links section, got:\n%s", withLinks)
	}
	if !strings.Contains(withLinks, "> ") {
		t.Errorf("expected cursor on first link, got:\n%s", withLinks)
	}
	without := helpView(0, "")
	if strings.Contains(without, "Links") {
		t.Errorf("links section shown without a web URL:\n%s", without)
	}
	if !strings.Contains(without, "marquee rate") {
		t.Errorf("commands missing from help:\n%s", without)
	}
}
