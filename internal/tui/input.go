package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editText applies a key to a single-line text field. Typed and pasted
// runes are appended up to maxInputLen runes; backspace removes one rune.
// Named keys leave the text unchanged.
func editText(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		return dropLastRune(text)
	case tea.KeySpace:
		return appendClamped(text, " ", maxInputLen)
	case tea.KeyRunes:
		if msg.Alt {
			return text
		}
		return appendClamped(text, singleLine(msg.Runes), maxInputLen)
	}
	return text
}

// editDigits is editText restricted to digits, up to n of them.
func editDigits(text string, msg tea.KeyMsg, n int) string {
	switch msg.Type {
	case tea.KeyBackspace:
		return dropLastRune(text)
	case tea.KeyRunes:
		if msg.Alt {
			return text
		}
		digits := strings.Map(func(r rune) rune {
			if r < '0' || r > '9' {
				return -1
			}
			return r
		}, string(msg.Runes))
		return appendClamped(text, digits, n)
	}
	return text
}

func dropLastRune(text string) string {
	if text == "" {
		return text
	}
	runes := []rune(text)
	return string(runes[:len(runes)-1])
}

// appendClamped appends as much of add as fits in limit runes.
func appendClamped(text, add string, limit int) string {
	room := limit - utf8.RuneCountInString(text)
	if room <= 0 || add == "" {
		return text
	}
	if r := []rune(add); len(r) > room {
		add = string(r[:room])
	}
	return text + add
}

// singleLine turns pasted line breaks and tabs into spaces and drops other
// control characters.
func singleLine(runes []rune) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case !unicode.IsPrint(r):
			return -1
		}
		return r
	}, string(runes))
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field renders one labelled form input with its inline error.
func field(label, value string, focused, masked bool, errMsg string) string {
	cursor := " "
	style := metaStyle
	if focused {
		cursor = accentStyle.Render(">")
		style = selectedStyle
	}
	shown := value
	if masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}
	if focused {
		shown += "█"
	}
	line := " " + cursor + " " + style.Render(label+":") + " " + shown + "\n"
	if errMsg != "" {
		line += "     " + errorStyle.Render(errMsg) + "\n"
	}
	return line
}
