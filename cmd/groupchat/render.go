package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/report"
)

var (
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
)

type renderer struct {
	w io.Writer
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w}
}

func (r *renderer) prompt(text string) {
	fmt.Fprintf(r.w, "%s %s\n", userStyle.Render("USER:"), text)
}

func (r *renderer) turn(turn int, msg protocol.Message) {
	fmt.Fprintf(r.w, "%s %s\n", speakerStyle.Render(fmt.Sprintf("[%d] %s:", turn, msg.SpeakerID)), msg.Content)
	for _, call := range msg.ToolCalls {
		line := fmt.Sprintf("    %s(%s) -> %s", call.Name, call.Arguments, firstLine(call.Result))
		if call.IsError {
			fmt.Fprintln(r.w, failStyle.Render(line))
			continue
		}
		fmt.Fprintln(r.w, toolStyle.Render(line))
	}
}

func (r *renderer) summary(rep *report.Report) {
	fmt.Fprintln(r.w)

	table := tablewriter.NewWriter(r.w)
	table.SetHeader([]string{"Session", "Status", "Reason", "Turns", "Actions"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{
		rep.SessionID,
		string(rep.Status),
		string(rep.Reason),
		strconv.Itoa(rep.TurnsTaken) + "/" + strconv.Itoa(rep.MaxTurns),
		strings.Join(rep.Actions, "; "),
	})
	table.Render()

	style := okStyle
	if rep.Status == orchestrate.StatusFailed {
		style = failStyle
	}
	if rep.Error != "" {
		fmt.Fprintln(r.w, style.Render("error: "+rep.Error))
	}
}

func (r *renderer) saved(id, dir string) {
	fmt.Fprintln(r.w, toolStyle.Render(fmt.Sprintf("report %s saved to %s", id, dir)))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 120 {
		return line[:120] + "..."
	}
	return line
}
