package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	minBarWidth         = 10
	barRune             = "█"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[32m", // green
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
}

// BarWidthFor returns the bar area left after labels in a line of totalWidth.
func BarWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	// label, separator, bar, space, percentage
	w := totalWidth - labelWidth - 3 - len(" 100.0%")
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

// RenderBars draws a horizontal bar per step scaled to its reach rate. A
// width of zero uses the terminal width.
func RenderBars(w io.Writer, rows []StepFunnel, names map[int]string, width int, forceColor bool) error {
	if Sessions(rows) == 0 {
		return nil
	}
	labels := make([]string, len(rows))
	labelWidth := 0
	for i, r := range rows {
		labels[i] = fmt.Sprintf("%2d %s", r.Step, names[r.Step])
		if lw := runewidth.StringWidth(labels[i]); lw > labelWidth {
			labelWidth = lw
		}
	}
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := BarWidthFor(width, labelWidth)
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintln(w, "Reach by Step"); err != nil {
		return err
	}
	for i, r := range rows {
		n := int(r.ReachRate*float64(barWidth) + 0.5)
		if n > barWidth {
			n = barWidth
		}
		bar := strings.Repeat(barRune, n)
		if useColor && n > 0 {
			bar = barColor(r.ReachRate) + bar + colorReset
		}
		pad := strings.Repeat(" ", barWidth-n)
		label := runewidth.FillRight(labels[i], labelWidth)
		if _, err := fmt.Fprintf(w, "%s │ %s%s %6s\n", label, bar, pad, Percent(r.ReachRate)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func barColor(reach float64) string {
	switch {
	case reach >= 0.66:
		return colorPalette[0]
	case reach >= 0.33:
		return colorPalette[1]
	default:
		return colorPalette[2]
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
