package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"sgb-go/internal/model"
	"sgb-go/internal/sgb"
)

const timeLayout = "2006-01-02 15:04"

// renderRecords writes a one-line-per-record table. liked and saved mark
// the local user's interactions.
func renderRecords(w io.Writer, records []model.AnalysisRecord, state model.InteractionState) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses found.")
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"ID", "Name", "Score", "Likes", "Saves", "Comments", "Uploaded", ""})

	for _, r := range records {
		marks := ""
		if state.LikedIDs.Has(r.ID) {
			marks += "♥"
		}
		if state.SavedIDs.Has(r.ID) {
			marks += "★"
		}
		if r.IsPrivate {
			marks += " private"
		}
		tbl.AppendRow(table.Row{
			r.ID, r.StudentName, r.OverallScore, r.Likes, r.Saves,
			len(r.Comments) + sgb.CountReplies(r.Comments),
			humanize.Time(r.UploadDate), strings.TrimSpace(marks),
		})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(records))})
	tbl.Render()
}

// renderRecord writes a full analysis with its comment thread.
func renderRecord(w io.Writer, r model.AnalysisRecord) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s  (%s)\n", r.StudentName, r.ID)
	fmt.Fprintf(w, "Uploaded %s  Score %d/100  ♥ %d  ★ %d\n", r.UploadDate.Local().Format(timeLayout), r.OverallScore, r.Likes, r.Saves)
	if r.IsPrivate {
		color.New(color.FgYellow).Fprintln(w, "private")
	}

	if r.CareerDirection != "" {
		fmt.Fprintf(w, "\nCareer: %s", r.CareerDirection)
		if r.CareerAlignment != nil {
			fmt.Fprintf(w, " (%d%% aligned)\n  %s", r.CareerAlignment.Percentage, r.CareerAlignment.Summary)
		}
		fmt.Fprintln(w)
	}

	renderList(w, "Strengths", r.Strengths, color.FgGreen)
	renderList(w, "Improvements", r.Improvements, color.FgYellow)

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Flagged entries")
		for _, e := range r.Errors {
			c := color.New(color.FgYellow)
			if e.Type == model.ErrorKindForbidden {
				c = color.New(color.FgRed)
			}
			c.Fprintf(w, "  [%s] p.%d %s\n", e.Type, e.Page, e.Content)
			fmt.Fprintf(w, "        %s\n", e.Reason)
			if e.Suggestion != "" {
				fmt.Fprintf(w, "        → %s\n", e.Suggestion)
			}
		}
	}

	renderList(w, "Suggestions", r.Suggestions, color.FgCyan)

	fmt.Fprintln(w)
	bold.Fprintf(w, "Comments (%d)\n", len(r.Comments)+sgb.CountReplies(r.Comments))
	renderThread(w, r.Comments)
}

func renderList(w io.Writer, title string, items []string, attr color.Attribute) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	color.New(color.Bold).Fprintln(w, title)
	c := color.New(attr)
	for _, it := range items {
		c.Fprintf(w, "  - %s\n", it)
	}
}

// renderThread writes comments newest first with their replies nested.
func renderThread(w io.Writer, comments []model.Comment) {
	for _, c := range sgb.SortCommentsNewestFirst(comments) {
		fmt.Fprintf(w, "%s  %s  %s\n", c.ID, c.UserName, formatTime(c.CreatedAt))
		fmt.Fprintf(w, "  %s\n", c.Content)
		renderReplies(w, sgb.GroupReplies(c), 1)
	}
}

func renderReplies(w io.Writer, nodes []sgb.ReplyNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Fprintf(w, "%s↳ %s  %s  %s\n", indent, n.Reply.ID, n.Reply.UserName, formatTime(n.Reply.CreatedAt))
		fmt.Fprintf(w, "%s  %s\n", indent, n.Reply.Content)
		renderReplies(w, n.Children, depth+1)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func deltaVerb(d sgb.Delta, on, off string) string {
	if d == sgb.Increment {
		return on
	}
	return off
}
