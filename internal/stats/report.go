package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/onboard/internal/model"
)

// CountSource yields per-step tracking aggregates.
type CountSource interface {
	StepCounts(ctx context.Context, filter model.FunnelFilter) ([]model.StepCount, error)
}

// CountSourceFunc adapts a function to CountSource.
type CountSourceFunc func(ctx context.Context, filter model.FunnelFilter) ([]model.StepCount, error)

// StepCounts calls f.
func (f CountSourceFunc) StepCounts(ctx context.Context, filter model.FunnelFilter) ([]model.StepCount, error) {
	return f(ctx, filter)
}

// Report contains precomputed data for funnel rendering.
type Report struct {
	Steps []StepFunnel `json:"steps"`
}

// BuildReport loads counts and computes the funnel through lastStep.
func BuildReport(ctx context.Context, src CountSource, filter model.FunnelFilter, lastStep int) (Report, error) {
	counts, err := src.StepCounts(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return Report{Steps: Funnel(counts, lastStep)}, nil
}

// Render prints the summary, the step table and the reach chart.
func (r Report) Render(w io.Writer, names map[int]string, width int, forceColor bool) error {
	if err := RenderSummary(w, r.Steps); err != nil {
		return err
	}
	if Sessions(r.Steps) == 0 {
		return nil
	}
	if err := RenderTable(w, r.Steps, names); err != nil {
		return err
	}
	return RenderBars(w, r.Steps, names, width, forceColor)
}
