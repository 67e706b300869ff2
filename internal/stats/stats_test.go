package stats

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFunnelRates(t *testing.T) {
	rows := Funnel([]model.StepCount{
		{Step: 1, Visited: 10, Completed: 8},
		{Step: 2, Visited: 8, Completed: 4},
		{Step: 4, Visited: 2, Completed: 2},
	}, 4)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[2].Step != 3 || rows[2].Visited != 0 {
		t.Fatalf("expected zero row for step 3, got %+v", rows[2])
	}
	if !approx(rows[1].CompletionRate, 0.5) {
		t.Fatalf("expected completion 0.5, got %f", rows[1].CompletionRate)
	}
	if !approx(rows[1].ReachRate, 0.8) {
		t.Fatalf("expected reach 0.8, got %f", rows[1].ReachRate)
	}
	if !approx(rows[0].DropOff, 0.2) {
		t.Fatalf("expected drop-off 0.2, got %f", rows[0].DropOff)
	}
	if !approx(rows[1].DropOff, 1) {
		t.Fatalf("expected drop-off 1, got %f", rows[1].DropOff)
	}
	if rows[3].DropOff != 0 {
		t.Fatalf("last step should have no drop-off, got %f", rows[3].DropOff)
	}
}

func TestFunnelIgnoresStepsBeyondRange(t *testing.T) {
	rows := Funnel([]model.StepCount{
		{Step: 1, Visited: 1},
		{Step: 18, Visited: 1},
		{Step: 5_000_000, Visited: 1},
		{Step: 0, Visited: 3},
	}, 17)
	if len(rows) != 18 {
		t.Fatalf("expected 18 rows, got %d", len(rows))
	}
	if rows[17].Visited != 1 {
		t.Fatalf("expected step 18 kept, got %+v", rows[17])
	}
	if rows[0].Visited != 1 {
		t.Fatalf("expected step 0 dropped, got %+v", rows[0])
	}
	if got := Funnel(nil, 1_000_000); len(got) != 20 {
		t.Fatalf("expected rows capped at 20, got %d", len(got))
	}
}

func TestFunnelEmpty(t *testing.T) {
	rows := Funnel(nil, 3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.ReachRate != 0 || r.CompletionRate != 0 {
			t.Fatalf("expected zero rates, got %+v", r)
		}
	}
	if Funnel(nil, 0) != nil {
		t.Fatalf("expected nil rows")
	}
}

func TestWorstDropOff(t *testing.T) {
	rows := Funnel([]model.StepCount{
		{Step: 1, Visited: 10},
		{Step: 2, Visited: 9},
		{Step: 3, Visited: 3},
		{Step: 4, Visited: 3},
	}, 4)
	worst, ok := WorstDropOff(rows)
	if !ok || worst.Step != 2 {
		t.Fatalf("expected step 2, got %+v", worst)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderBars(t *testing.T) {
	rows := Funnel([]model.StepCount{
		{Step: 1, Visited: 4},
		{Step: 2, Visited: 2},
	}, 2)
	var buf bytes.Buffer
	if err := RenderBars(&buf, rows, map[int]string{1: "welcome", 2: "name"}, 40, false); err != nil {
		t.Fatalf("render bars: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Reach by Step") {
		t.Fatalf("expected title in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	full := strings.Count(lines[1], barRune)
	half := strings.Count(lines[2], barRune)
	if full != BarWidthFor(40, len(" 1 welcome")) {
		t.Fatalf("expected full bar, got %d", full)
	}
	if half*2 != full && half*2 != full+1 {
		t.Fatalf("expected half bar, got %d of %d", half, full)
	}
	if strings.Contains(out, colorReset) {
		t.Fatalf("unexpected color codes")
	}
}

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "onboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	events := []model.TrackEvent{
		{SessionID: "ob_a", StepNumber: 1},
		{SessionID: "ob_a", StepNumber: 1, Completed: true},
		{SessionID: "ob_a", StepNumber: 2},
		{SessionID: "ob_b", StepNumber: 1},
	}
	for _, ev := range events {
		if err := st.InsertTrackEvent(ctx, 0, ev, 1000); err != nil {
			t.Fatalf("insert event: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.FunnelFilter{}, 3)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(report.Steps))
	}
	if report.Steps[0].Visited != 2 || report.Steps[0].Completed != 1 {
		t.Fatalf("unexpected step 1: %+v", report.Steps[0])
	}
	if !approx(report.Steps[1].ReachRate, 0.5) {
		t.Fatalf("unexpected reach: %+v", report.Steps[1])
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, nil, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Sessions: 2") {
		t.Fatalf("expected session count, got %q", buf.String())
	}
}

func TestBuildReportFromFunc(t *testing.T) {
	src := CountSourceFunc(func(context.Context, model.FunnelFilter) ([]model.StepCount, error) {
		return nil, nil
	})
	report, err := BuildReport(context.Background(), src, model.FunnelFilter{}, 2)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, nil, 0, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No onboarding sessions found.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
