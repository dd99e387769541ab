package pipeline

import (
	"time"

	"facequiz/internal/analysis"
	"facequiz/internal/model"
	"facequiz/internal/util"
)

// PlannedStage is one stage of the script with its progress window.
type PlannedStage struct {
	model.Stage
	Window analysis.Window
}

// Plan describes what a submission would do, without loading the model.
type Plan struct {
	Backend   model.Backend
	Endpoints util.Endpoints // hosted backend only
	ONNXModel string         // onnx backend only
	Stages    []PlannedStage
	Total     time.Duration
	Timeout   time.Duration
}

// BuildPlan resolves the stage windows and model endpoints for opts.
func BuildPlan(opts model.Options) (Plan, error) {
	stages := opts.Stages
	if len(stages) == 0 {
		stages = model.DefaultStages()
	}
	windows, err := analysis.Windows(stages)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{
		Backend: opts.Backend,
		Total:   model.TotalDuration(stages),
		Timeout: opts.PredictTimeout,
	}
	if p.Backend == "" {
		p.Backend = model.BackendHosted
	}
	for i, st := range stages {
		p.Stages = append(p.Stages, PlannedStage{Stage: st, Window: windows[i]})
	}
	switch p.Backend {
	case model.BackendONNX:
		p.ONNXModel = opts.ONNXModel
	default:
		base := opts.ModelURL
		if base == "" {
			base = model.DefaultModelURL
		}
		ep, err := util.ModelEndpoints(base, opts.MetadataURL, opts.PredictURL)
		if err != nil {
			return Plan{}, err
		}
		p.Endpoints = ep
	}
	return p, nil
}
