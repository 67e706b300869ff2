package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxScreenWidth caps the screen-name column; longer names are cut with an ellipsis.
const maxScreenWidth = 24

type column struct {
	title string
	right bool
}

// funnelColumns matches the cells produced by Row.
var funnelColumns = []column{
	{title: "Step", right: true},
	{title: "Screen"},
	{title: "Visited", right: true},
	{title: "Completed", right: true},
	{title: "Completion", right: true},
	{title: "Reach", right: true},
	{title: "Drop-off", right: true},
}

const screenCol = 1

// RenderTable prints a header, a rule and one line per step.
func RenderTable(w io.Writer, rows []StepFunnel, names map[int]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No step stats found.")
		return err
	}
	for _, line := range tableLines(rows, names) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func tableLines(rows []StepFunnel, names map[int]string) []string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = Row(r, runewidth.Truncate(names[r.Step], maxScreenWidth, "…"))
	}

	widths := make([]int, len(funnelColumns))
	titles := make([]string, len(funnelColumns))
	rules := make([]string, len(funnelColumns))
	for i, c := range funnelColumns {
		titles[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
		for _, row := range cells {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
		rules[i] = strings.Repeat("-", widths[i])
	}

	lines := make([]string, 0, len(cells)+2)
	lines = append(lines, joinCells(titles, widths), joinCells(rules, widths))
	for _, row := range cells {
		lines = append(lines, joinCells(row, widths))
	}
	return lines
}

func joinCells(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if funnelColumns[i].right {
			padded[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			padded[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}
