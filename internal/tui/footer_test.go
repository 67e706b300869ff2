package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/onboard/internal/wizard"
)

func TestRenderFooterFormats(t *testing.T) {
	m := newHarness(t, wizard.ModeCreate, nil).model
	m.state = wizard.State{Kind: wizard.KindStep, Step: 6}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Step 6 of 17 · 35%", "Your audience", "enter next"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterEditMode(t *testing.T) {
	h := newHarness(t, wizard.ModeEdit, nil)
	m := h.model
	m.state = wizard.State{Kind: wizard.KindStep, Step: 9}
	out := m.renderFooter()
	if !containsAll(out, []string{"Editing · step 9 of 13", "Your brand"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "%") {
		t.Fatalf("edit footer should not show create progress: %s", out)
	}
}

func TestRenderFooterPaywallHelp(t *testing.T) {
	m := newHarness(t, wizard.ModeCreate, nil).model
	m.state = wizard.State{Kind: wizard.KindPaywall, Step: wizard.PaywallStep}
	out := m.renderFooter()
	if !containsAll(out, []string{"Step 16 of 17", "enter checkout"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterFallbackHidesProgress(t *testing.T) {
	m := newHarness(t, wizard.ModeCreate, nil).model
	m.state = wizard.State{Kind: wizard.KindFallback, Step: 18}
	out := m.renderFooter()
	if strings.Contains(out, "Step 18") || strings.Contains(out, "%") {
		t.Fatalf("fallback footer should not show progress: %s", out)
	}
	if !strings.Contains(out, "enter start over") {
		t.Fatalf("footer missing fallback help: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
