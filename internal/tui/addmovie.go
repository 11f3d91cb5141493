package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/internal/forms"
	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

type addField int

const (
	addTitle addField = iota
	addGenre
	addYear
	addDescription
	numAddFields
)

// payload names, matching forms.Errors keys
var addFieldKeys = [numAddFields]string{"title", "genre", "release_year", "description"}

type movieCreatedMsg struct {
	gen   int
	movie *domain.Movie
	err   error
}

type addMovieModel struct {
	api        API
	scope      scope
	fields     [numAddFields]string
	focus      addField
	errs       forms.Errors
	status     string
	submitting bool
}

func newAddMovieModel(api API) addMovieModel {
	m := addMovieModel{api: api}
	m.reset()
	return m
}

func (m *addMovieModel) reset() {
	m.fields = [numAddFields]string{}
	m.fields[addGenre] = domain.Genres[0]
	m.fields[addYear] = strconv.Itoa(time.Now().Year())
	m.focus = addTitle
	m.errs = nil
	m.status = ""
	m.submitting = false
}

func (m addMovieModel) Init() (addMovieModel, tea.Cmd) {
	m.scope = m.scope.renew()
	return m, nil
}

func (m addMovieModel) Update(msg tea.Msg) (addMovieModel, tea.Cmd) {
	switch msg := msg.(type) {
	case movieCreatedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.status = client.Message(msg.err)
			if fe := client.FieldErrors(msg.err); len(fe) > 0 {
				m.errs = forms.Errors(fe)
			}
			return m, nil
		}
		title := msg.movie.Title
		m.reset()
		return m, func() tea.Msg {
			return navigateMsg{to: viewMovies, flash: fmt.Sprintf("Movie added successfully! (%s)", title)}
		}

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m addMovieModel) updateKeys(msg tea.KeyMsg) (addMovieModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.status = ""

	switch key := msg.String(); key {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numAddFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numAddFields) % numAddFields
	case "enter":
		if m.focus == addDescription {
			return m.submit()
		}
		m.focus++
	default:
		switch m.focus {
		case addGenre:
			if key == "h" || key == "l" || key == "left" || key == "right" {
				m.fields[addGenre] = cycleGenre(m.fields[addGenre], key == "l" || key == "right")
			}
		case addYear:
			m.fields[addYear] = editDigits(m.fields[addYear], msg, 4)
		default:
			m.fields[m.focus] = editText(m.fields[m.focus], msg)
		}
	}
	return m, nil
}

func cycleGenre(current string, forward bool) string {
	idx := 0
	for i, g := range domain.Genres {
		if g == current {
			idx = i
			break
		}
	}
	n := len(domain.Genres)
	if forward {
		idx = (idx + 1) % n
	} else {
		idx = (idx - 1 + n) % n
	}
	return domain.Genres[idx]
}

func (m addMovieModel) submit() (addMovieModel, tea.Cmd) {
	year, _ := strconv.Atoi(m.fields[addYear])
	f := forms.Movie{
		Title:       m.fields[addTitle],
		Genre:       m.fields[addGenre],
		ReleaseYear: year,
		Description: m.fields[addDescription],
	}
	if errs := f.Validate(); errs != nil {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	m.submitting = true

	api, ctx, gen, in := m.api, m.scope.context(), m.scope.gen, f.Input()
	return m, func() tea.Msg {
		mv, err := api.CreateMovie(ctx, in)
		return movieCreatedMsg{gen: gen, movie: mv, err: err}
	}
}

func (m addMovieModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + inputPromptStyle.Render("Add a Movie") + "\n\n")

	labels := [numAddFields]string{"title", "genre", "year", "description"}
	for i := addField(0); i < numAddFields; i++ {
		errMsg := m.errs[addFieldKeys[i]]
		if i == addGenre {
			cursor := " "
			style := metaStyle
			if i == m.focus {
				cursor = accentStyle.Render(">")
				style = selectedStyle
			}
			g := m.fields[addGenre]
			fmt.Fprintf(&b, " %s %s %s  %s\n", cursor, style.Render(labels[i]+":"), GenreStyle(g).Render(g), dimStyle.Render("(h/l to cycle)"))
			if errMsg != "" {
				b.WriteString("     " + errorStyle.Render(errMsg) + "\n")
			}
			continue
		}
		b.WriteString(field(labels[i], m.fields[i], i == m.focus, false, errMsg))
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("adding..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}
