package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/marquee/internal/forms"
	"github.com/naveenspark/marquee/pkg/client"
)

type registerField int

const (
	regUsername registerField = iota
	regEmail
	regPassword1
	regPassword2
	numRegisterFields
)

var registerKeys = [numRegisterFields]string{"username", "email", "password1", "password2"}

type registerModel struct {
	sess       Session
	scope      scope
	fields     [numRegisterFields]string
	focus      registerField
	errs       forms.Errors
	status     string
	submitting bool
}

func newRegisterModel(sess Session) registerModel {
	return registerModel{sess: sess}
}

func (m registerModel) Init() (registerModel, tea.Cmd) {
	m.scope = m.scope.renew()
	m.fields[regPassword1] = ""
	m.fields[regPassword2] = ""
	m.errs = nil
	m.status = ""
	m.submitting = false
	return m, nil
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authenticatedMsg:
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
		m.fields = [numRegisterFields]string{}
		m.focus = regUsername
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch key := msg.String(); key {
		case "ctrl+s":
			return m.submit()
		case "enter":
			if m.focus == regPassword2 {
				return m.submit()
			}
			m.focus++
		case "tab", "down":
			m.focus = (m.focus + 1) % numRegisterFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
		default:
			m.fields[m.focus] = editText(m.fields[m.focus], msg)
		}
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	f := forms.Register{
		Username:  m.fields[regUsername],
		Email:     m.fields[regEmail],
		Password1: m.fields[regPassword1],
		Password2: m.fields[regPassword2],
	}
	m.status = ""
	if errs := f.Validate(); errs != nil {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	m.submitting = true
	sess, ctx, gen, req := m.sess, m.scope.context(), m.scope.gen, f.Request()
	return m, func() tea.Msg {
		id, err := sess.Register(ctx, req)
		return authenticatedMsg{gen: gen, identity: id, err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + inputPromptStyle.Render("Create Account") + "\n\n")
	labels := [numRegisterFields]string{"username", "email", "password", "confirm"}
	for i := registerField(0); i < numRegisterFields; i++ {
		masked := i == regPassword1 || i == regPassword2
		b.WriteString(field(labels[i], m.fields[i], i == m.focus, masked, m.errs[registerKeys[i]]))
	}
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("creating account..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}
