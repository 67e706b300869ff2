// Package stats computes onboarding funnel metrics and renders text reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
)

const sparkChars = " .:-=+*#%@"

// StepFunnel is the funnel row for one step.
type StepFunnel struct {
	Step      int `json:"step"`
	Visited   int `json:"visited"`
	Completed int `json:"completed"`
	// CompletionRate is Completed over Visited.
	CompletionRate float64 `json:"completion_rate"`
	// ReachRate is Visited over the sessions that visited the first step.
	ReachRate float64 `json:"reach_rate"`
	// DropOff is the share of this step's visitors that never visited the next step.
	DropOff float64 `json:"drop_off"`
}

// Funnel expands counts into one row per step from 1 to lastStep, filling
// gaps with zeros. Counts above lastStep are kept up to formstore.MaxStep;
// anything beyond that is dropped.
func Funnel(counts []model.StepCount, lastStep int) []StepFunnel {
	if lastStep > formstore.MaxStep {
		lastStep = formstore.MaxStep
	}
	byStep := make(map[int]model.StepCount, len(counts))
	maxStep := lastStep
	for _, c := range counts {
		if c.Step < formstore.MinStep || c.Step > formstore.MaxStep {
			continue
		}
		byStep[c.Step] = c
		if c.Step > maxStep {
			maxStep = c.Step
		}
	}
	if maxStep <= 0 {
		return nil
	}

	rows := make([]StepFunnel, maxStep)
	for i := range rows {
		c := byStep[i+1]
		rows[i] = StepFunnel{Step: i + 1, Visited: c.Visited, Completed: c.Completed}
	}
	base := rows[0].Visited
	for i := range rows {
		r := &rows[i]
		r.CompletionRate = ratio(r.Completed, r.Visited)
		r.ReachRate = ratio(r.Visited, base)
		if i+1 < len(rows) && r.Visited > 0 {
			next := rows[i+1].Visited
			if next > r.Visited {
				next = r.Visited
			}
			r.DropOff = 1 - ratio(next, r.Visited)
		}
	}
	return rows
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Sessions is the number of sessions that entered the funnel.
func Sessions(rows []StepFunnel) int {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Visited
}

// WorstDropOff returns the step losing the largest share of its visitors.
func WorstDropOff(rows []StepFunnel) (StepFunnel, bool) {
	candidates := make([]StepFunnel, 0, len(rows))
	for _, r := range rows {
		if r.Visited > 0 && r.DropOff > 0 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return StepFunnel{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DropOff == candidates[j].DropOff {
			return candidates[i].Step < candidates[j].Step
		}
		return candidates[i].DropOff > candidates[j].DropOff
	})
	return candidates[0], true
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints headline funnel numbers.
func RenderSummary(w io.Writer, rows []StepFunnel) error {
	total := Sessions(rows)
	if total == 0 {
		_, err := fmt.Fprintln(w, "No onboarding sessions found.")
		return err
	}
	last := rows[len(rows)-1]
	reach := make([]float64, len(rows))
	for i, r := range rows {
		reach[i] = r.ReachRate
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Reached step %d: %d (%s)\n", last.Step, last.Visited, Percent(last.ReachRate)); err != nil {
		return err
	}
	if worst, ok := WorstDropOff(rows); ok {
		if _, err := fmt.Fprintf(w, "Largest drop-off: step %d (%s)\n", worst.Step, Percent(worst.DropOff)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Reach: [%s]\n", Sparkline(reach)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// Row formats r as table cells.
func Row(r StepFunnel, name string) []string {
	return []string{
		fmt.Sprintf("%d", r.Step),
		name,
		fmt.Sprintf("%d", r.Visited),
		fmt.Sprintf("%d", r.Completed),
		Percent(r.CompletionRate),
		Percent(r.ReachRate),
		Percent(r.DropOff),
	}
}

// Percent formats a ratio as a percentage with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
