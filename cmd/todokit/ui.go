package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dreamware/todokit/internal/model"
)

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// ui renders command output. Styles are bound to the output writers so
// colour is only emitted on a terminal.
type ui struct {
	out, errOut io.Writer

	titleStyle   lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	failureStyle lipgloss.Style
	mutedStyle   lipgloss.Style
	doneStyle    lipgloss.Style
	panelStyle   lipgloss.Style
}

func newUI(out, errOut io.Writer) *ui {
	r := lipgloss.NewRenderer(out)
	er := lipgloss.NewRenderer(errOut)
	return &ui{
		out:          out,
		errOut:       errOut,
		titleStyle:   r.NewStyle().Bold(true),
		successStyle: r.NewStyle().Foreground(lipgloss.Color("42")),
		warningStyle: r.NewStyle().Foreground(lipgloss.Color("214")),
		failureStyle: er.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		mutedStyle:   r.NewStyle().Faint(true),
		doneStyle:    r.NewStyle().Faint(true).Strikethrough(true),
		panelStyle: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

func (u *ui) line(s string) { fmt.Fprintln(u.out, s) }

func (u *ui) ok(msg string) { fmt.Fprintln(u.out, u.successStyle.Render("✔ "+msg)) }

func (u *ui) fail(msg string) { fmt.Fprintln(u.errOut, u.failureStyle.Render("✖ "+msg)) }

func (u *ui) muted(msg string) { fmt.Fprintln(u.out, u.mutedStyle.Render(msg)) }

func (u *ui) prompt(label string) { fmt.Fprint(u.errOut, label) }

func (u *ui) newline() { fmt.Fprintln(u.errOut) }

// notification prints n styled by severity. Errors go to stderr.
func (u *ui) notification(n model.Notification) {
	switch n.Severity {
	case model.SeveritySuccess:
		fmt.Fprintln(u.out, u.successStyle.Render("✔ "+n.Message))
	case model.SeverityWarning:
		fmt.Fprintln(u.out, u.warningStyle.Render("! "+n.Message))
	default:
		u.fail(n.Message)
	}
}

func (u *ui) todoLine(td model.Todo) string {
	if td.Done {
		return fmt.Sprintf("%s %s  %s", boxChecked, u.doneStyle.Render(td.Label), u.mutedStyle.Render(td.ID))
	}
	return fmt.Sprintf("%s %s  %s", boxUnchecked, td.Label, u.mutedStyle.Render(td.ID))
}

func (u *ui) todo(td model.Todo) { u.line(u.todoLine(td)) }

func (u *ui) todoList(list []model.Todo) {
	done := 0
	for _, td := range list {
		if td.Done {
			done++
		}
	}

	lines := []string{
		fmt.Sprintf("%s  %s %d  %s %d",
			u.titleStyle.Render("Todos"),
			u.successStyle.Render("✔"), done,
			u.warningStyle.Render("•"), len(list)-done),
		"",
	}
	if len(list) == 0 {
		lines = append(lines, u.mutedStyle.Render("nothing to do"))
	}
	for _, td := range list {
		lines = append(lines, u.todoLine(td))
	}
	u.line(u.panelStyle.Render(strings.Join(lines, "\n")))
}

func (u *ui) userLine(usr model.User) string {
	return fmt.Sprintf("%s <%s>  %s", usr.Username, usr.Email, u.mutedStyle.Render(usr.ID))
}

func (u *ui) user(usr model.User) {
	u.line(u.userLine(usr))
	u.line(u.mutedStyle.Render("created " + usr.CreatedAt.Format("2006-01-02 15:04")))
}

func (u *ui) userList(list []model.User) {
	lines := []string{u.titleStyle.Render(fmt.Sprintf("Users (%d)", len(list))), ""}
	for _, usr := range list {
		lines = append(lines, u.userLine(usr))
	}
	u.line(u.panelStyle.Render(strings.Join(lines, "\n")))
}
