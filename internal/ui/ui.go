// Package ui renders tasks and lists for the terminal.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"daylist/internal/model"
)

var (
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	doneStyle      = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	importantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

// IsTTY reports whether stdout is a terminal. Styling is skipped when piped.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderAccent highlights s when writing to a terminal.
func RenderAccent(s string) string {
	if !IsTTY() {
		return s
	}
	return accentStyle.Render(s)
}

// RenderPass highlights a success marker when writing to a terminal.
func RenderPass(s string) string {
	if !IsTTY() {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(s)
}

// RenderWarn highlights a warning marker when writing to a terminal.
func RenderWarn(s string) string {
	if !IsTTY() {
		return s
	}
	return importantStyle.Render(s)
}

// RenderTask formats one task line: checkbox, star, title, due date.
func RenderTask(t model.Task) string {
	var b strings.Builder

	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	b.WriteString(box)

	if t.Important {
		star := " ★"
		if IsTTY() {
			star = " " + importantStyle.Render("★")
		}
		b.WriteString(star)
	}

	title := t.Title
	if t.Completed && IsTTY() {
		title = doneStyle.Render(title)
	}
	b.WriteString(" " + title)

	if t.DueDate != nil {
		due := fmt.Sprintf("(due %s)", t.DueDate.Format("2006-01-02"))
		if IsTTY() {
			due = dimStyle.Render(due)
		}
		b.WriteString(" " + due)
	}

	return b.String()
}

// RenderSearchResult formats a search hit with its parent list title.
func RenderSearchResult(r model.SearchResult) string {
	line := RenderTask(r.Task)
	if r.ListTitle != nil {
		tag := fmt.Sprintf("[%s]", *r.ListTitle)
		if IsTTY() {
			tag = dimStyle.Render(tag)
		}
		line += " " + tag
	}
	return line
}

// RenderList formats one list line with its age.
func RenderList(l model.List) string {
	age := dimStyle.Render(humanAge(time.Since(l.CreatedAt)))
	if !IsTTY() {
		age = humanAge(time.Since(l.CreatedAt))
	}
	return fmt.Sprintf("%s  %s", l.Title, age)
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
