package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBuildStyledRunesLabel(t *testing.T) {
	runes := buildStyledRunes([]rune("Niche: art"), labelBoundary([]rune("Niche: art")), mutedStyle, valueStyle)
	if len(runes) != 10 {
		t.Fatalf("expected 10 runes, got %d", len(runes))
	}
	if runes[0].s != mutedStyle.Render("N") {
		t.Fatalf("expected label style for first rune")
	}
	if runes[5].s != mutedStyle.Render(":") {
		t.Fatalf("expected label style for colon")
	}
	if runes[7].s != valueStyle.Render("a") {
		t.Fatalf("expected value style after label")
	}
	if !runes[6].isSpace {
		t.Fatalf("expected space flag")
	}
}

func TestLabelEndWithoutLabel(t *testing.T) {
	if got := labelBoundary([]rune("no label here")); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestBuildStyledRunesWideRune(t *testing.T) {
	runes := buildStyledRunes([]rune("日"), -1, valueStyle, valueStyle)
	if runes[0].width != 2 {
		t.Fatalf("expected width 2, got %d", runes[0].width)
	}
}

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapText("one two three", plain, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "one two" || lines[1] != "three" {
		t.Fatalf("unexpected wrap %q", lines)
	}
}

func TestWrapTextHardBreaksLongWord(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapText("abcdefghij", plain, 4)
	if out != "abcd\nefgh\nij" {
		t.Fatalf("unexpected wrap %q", out)
	}
}

func TestWrapTextKeepsNewlines(t *testing.T) {
	plain := lipgloss.NewStyle()
	out := wrapText("a\nb", plain, 10)
	if out != "a\nb" {
		t.Fatalf("unexpected wrap %q", out)
	}
}
