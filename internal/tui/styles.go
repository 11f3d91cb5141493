package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Marquee-light animation for the header.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "M A R Q U E E" as a row of bulbs chasing from
// left to right. Dim tungsten (#5a3d12) -> warm gold (#fbbf24).
func renderShimmerLogo(frame int) string {
	const text = "MARQUEE"
	n := len(text)

	var out string

	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// Chase phase, one bulb wave moving through the text
		phase := t*0.12 - x*4.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.6)

		// Slow flicker
		flicker := math.Sin(t*0.041) * 0.08
		b = b*0.78 + flicker + 0.16

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep:   (90, 61, 18)   #5a3d12
		// Bright: (251, 191, 36) #fbbf24
		r := clampByte(90 + b*(251-90))
		g := clampByte(61 + b*(191-61))
		bl := clampByte(18 + b*(36-18))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	starOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24"))

	starOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#404858"))

	reviewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Surface colors
	borderColor  = lipgloss.Color("#2a2418")
	surfaceColor = lipgloss.Color("#111118")

	genreColors = map[string]lipgloss.Color{
		"Action":      lipgloss.Color("#e06060"),
		"Comedy":      lipgloss.Color("#facc15"),
		"Drama":       lipgloss.Color("#b080d0"),
		"Horror":      lipgloss.Color("#d05050"),
		"Sci-Fi":      lipgloss.Color("#3ecce4"),
		"Romance":     lipgloss.Color("#f0819a"),
		"Thriller":    lipgloss.Color("#f0944a"),
		"Fantasy":     lipgloss.Color("#c084e0"),
		"Documentary": lipgloss.Color("#60a0e0"),
		"Other":       lipgloss.Color("#8890a0"),
	}
)

// GenreStyle returns a bold style colored for the given genre.
func GenreStyle(genre string) lipgloss.Style {
	if c, ok := genreColors[genre]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpBar(pairs ...string) string {
	entries := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, helpEntry(pairs[i], pairs[i+1]))
	}
	return strings.Join(entries, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	path  string
}

var helpItems = []helpItem{
	{"Browse movies", "the web catalogue", "/movies"},
	{"Add a movie", "the web form", "/movies/add"},
	{"Sign up", "create an account", "/register"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int, webURL string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("M A R Q U E E")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Movies, rated by people who watched them.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"marquee", "Browse and rate (interactive)"},
		{"marquee login", "Sign in with email and password"},
		{"marquee register", "Create an account"},
		{"marquee logout", "Clear your session"},
		{"marquee movies", "List movies"},
		{"marquee show <id>", "Show a movie and its ratings"},
		{"marquee rate <id> <1-5>", "Rate a movie"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}

	if webURL == "" {
		return b.String()
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-24s", item.label))
		prefix := "    "
		if i == cursor {
			label = selectedStyle.Render(fmt.Sprintf("%-24s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
