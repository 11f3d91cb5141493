package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

var lobbyGreetings = [...]string{
	"The lights are down. Your seat is empty.",
	"Somebody gave a two-star review to your favourite film. Are you going to let that stand?",
	"The popcorn is fresh. The ratings are not, until you add yours.",
	"Every critic started with a first review.",
	"The projector is warm. The reel is threaded. You are in the lobby.",
	"A sequel nobody asked for just got five stars. Restore balance.",
	"Rolling credits on another day without your opinion.",
	"The usher has asked twice. Tickets, please.",
	"You have watched it. You have thoughts. Write them down.",
	"The front row is still open. It usually is.",
	"Thumbs are for amateurs. We use stars here.",
	"There is a movie in the catalogue with zero ratings. It is waiting for you.",
}

// banner is the figlet title shown at the top of help.
func banner() string {
	fig := figure.NewFigure("marquee", "small", true)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D4A017")).
		Bold(true).
		Render(fig.String())
}

// printGreeting greets someone who is not signed in.
func printGreeting(out io.Writer) {
	msg := lobbyGreetings[rand.IntN(len(lobbyGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D4A017")).
		Bold(true).
		Render("MARQUEE")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Not signed in. To sign in: marquee login")

	fmt.Fprintf(out, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
