package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/internal/forms"
	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
)

// authenticatedMsg reports a successful login or registration.
type authenticatedMsg struct {
	gen      int
	identity *domain.Identity
	err      error
}

type loginField int

const (
	loginEmail loginField = iota
	loginPassword
	numLoginFields
)

type loginModel struct {
	sess       Session
	scope      scope
	fields     [numLoginFields]string
	focus      loginField
	errs       forms.Errors
	status     string
	submitting bool
}

func newLoginModel(sess Session) loginModel {
	return loginModel{sess: sess}
}

func (m loginModel) Init() (loginModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.fields[loginPassword] = ""
	m.errs = nil
	m.status = ""
	m.submitting = false
	return m, nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authenticatedMsg:
		if !m.scope.current(msg.gen) {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.status = client.Message(msg.err)
			return m, nil
		}
		m.fields = [numLoginFields]string{}
		m.focus = loginEmail
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch key := msg.String(); key {
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus == loginPassword {
				return m.submit()
			}
			m.focus++
		case "tab", "down":
			m.focus = (m.focus + 1) % numLoginFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		default:
			m.fields[m.focus] = editText(m.fields[m.focus], msg)
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	f := forms.Login{Email: m.fields[loginEmail], Password: m.fields[loginPassword]}
	m.status = ""
	if errs := f.Validate(); errs != nil {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	m.submitting = true
	sess, ctx, gen := m.sess, m.scope.context(), m.scope.gen
	return m, func() tea.Msg {
		id, err := sess.Login(ctx, f.Email, f.Password)
		return authenticatedMsg{gen: gen, identity: id, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + inputPromptStyle.Render("Sign In") + "\n\n")
	b.WriteString(field("email", m.fields[loginEmail], m.focus == loginEmail, false, m.errs["email"]))
	b.WriteString(field("password", m.fields[loginPassword], m.focus == loginPassword, true, m.errs["password"]))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}
