// Table rendering for the status and history commands.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan — headers
	colorSuccess = lipgloss.Color("#00E676") // Green — ok outcomes
	colorDanger  = lipgloss.Color("#FF5252") // Red — failed outcomes
	colorMuted   = lipgloss.Color("#8C8C8C") // Gray — secondary text
)

var (
	styleHeader = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleCell = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleOK = lipgloss.NewStyle().
		Foreground(colorSuccess)

	styleFail = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)
)

// PackageRow is one line of the status package table.
type PackageRow struct {
	Name string
	Dir  string
	Role string
	Kind string
}

// RunRow is one line of the history table.
type RunRow struct {
	ID        string
	Command   string
	Outcome   string
	StartedAt time.Time
	Duration  time.Duration
}

// PackageTable renders the declared package set in build order.
func (p *Printer) PackageTable(rows []PackageRow) {
	cols := []int{len("PACKAGE"), len("DIR"), len("ROLE"), len("KIND")}
	for _, r := range rows {
		cols[0] = max(cols[0], len(r.Name))
		cols[1] = max(cols[1], len(r.Dir))
		cols[2] = max(cols[2], len(r.Role))
		cols[3] = max(cols[3], len(r.Kind))
	}

	fmt.Fprintln(p.w, styleHeader.Render(row(cols, "PACKAGE", "DIR", "ROLE", "KIND")))
	for _, r := range rows {
		fmt.Fprintln(p.w, styleCell.Render(row(cols, r.Name, r.Dir, r.Role, r.Kind)))
	}
}

// RunTable renders recent pipeline runs, newest first.
func (p *Printer) RunTable(rows []RunRow) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, styleCell.Render("no recorded runs"))
		return
	}

	// Column 3 is sized for the "2006-01-02 15:04" timestamp format.
	cols := []int{8, len("COMMAND"), len("OUTCOME"), 16, len("DURATION")}
	for _, r := range rows {
		cols[1] = max(cols[1], len(r.Command))
		cols[2] = max(cols[2], len(r.Outcome))
	}

	fmt.Fprintln(p.w, styleHeader.Render(row(cols, "RUN", "COMMAND", "OUTCOME", "STARTED", "DURATION")))
	for _, r := range rows {
		outcomeStyle := styleOK
		if r.Outcome != "ok" {
			outcomeStyle = styleFail
		}
		fmt.Fprintln(p.w,
			styleCell.Render(pad(shortID(r.ID), cols[0]))+
				styleCell.Render(pad(r.Command, cols[1]))+
				outcomeStyle.Render(pad(r.Outcome, cols[2]))+
				styleCell.Render(pad(r.StartedAt.Format("2006-01-02 15:04"), cols[3]))+
				styleCell.Render(fmt.Sprintf("%.1fs", r.Duration.Seconds())))
	}
}

// ReleaseState renders the persisted release step for a version.
func (p *Printer) ReleaseState(version, step string, updated time.Time) {
	style := styleOK
	if step == "pending" || step == "validated" {
		style = styleCell
	}
	fmt.Fprintf(p.w, "%s %s %s\n",
		styleHeader.Render("release "+version),
		style.Render(step),
		styleCell.Render("("+updated.Format(time.RFC3339)+")"))
}

func row(widths []int, cells ...string) string {
	var b strings.Builder
	for i, c := range cells {
		b.WriteString(c)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-len(c)+2))
		}
	}
	return b.String()
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-len(s)+2)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
