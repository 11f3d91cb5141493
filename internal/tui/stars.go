package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const maxStars = 5

var starLabels = [...]string{"", "Poor", "Fair", "Good", "Very Good", "Excellent"}

// starsChangedMsg reports a new value picked on an editable widget.
type starsChangedMsg struct {
	value int
}

// stars is the single rating widget used for display and input.
type stars struct {
	value     int
	max       int
	readOnly  bool
	showLabel bool
	onChange  func(int) tea.Msg
}

func newStars(value int) stars {
	return stars{value: value, max: maxStars, readOnly: true}
}

func newStarInput(value int) stars {
	return stars{
		value:     value,
		max:       maxStars,
		showLabel: true,
		onChange:  func(v int) tea.Msg { return starsChangedMsg{value: v} },
	}
}

func (s stars) limit() int {
	if s.max <= 0 {
		return maxStars
	}
	return s.max
}

// Update moves the value on h/l, arrows, or a digit. Read-only widgets
// ignore input.
func (s stars) Update(msg tea.KeyMsg) (stars, tea.Cmd) {
	if s.readOnly {
		return s, nil
	}
	v := s.value
	switch key := msg.String(); key {
	case "h", "left":
		v--
	case "l", "right":
		v++
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			v = int(key[0] - '0')
		} else {
			return s, nil
		}
	}
	if v < 1 {
		v = 1
	}
	if v > s.limit() {
		v = s.limit()
	}
	if v == s.value {
		return s, nil
	}
	s.value = v
	if s.onChange == nil {
		return s, nil
	}
	fn := s.onChange
	return s, func() tea.Msg { return fn(v) }
}

func (s stars) View() string {
	n := s.limit()
	filled := min(max(s.value, 0), n)
	out := starOnStyle.Render(strings.Repeat("★", filled)) +
		starOffStyle.Render(strings.Repeat("☆", n-filled))
	if s.showLabel {
		out += " " + dimStyle.Render(s.label())
	}
	return out
}

func (s stars) label() string {
	if s.value <= 0 {
		return "Select a rating"
	}
	if s.limit() == maxStars && s.value < len(starLabels) {
		return fmt.Sprintf("%d/%d %s", s.value, maxStars, starLabels[s.value])
	}
	return fmt.Sprintf("%d/%d", s.value, s.limit())
}
