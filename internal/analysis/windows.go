// Package analysis runs the scripted analysis animation alongside a
// prediction and reveals the result only once both have finished.
package analysis

import (
	"errors"
	"fmt"

	"facequiz/internal/model"
)

var (
	ErrNoStages    = errors.New("analysis: stage script is empty")
	ErrBadDuration = errors.New("analysis: stage duration must be positive")
)

// Window is the slice of overall progress, in percent, owned by one stage.
type Window struct {
	Start float64
	End   float64
}

// At returns the overall percent after frac of the stage has elapsed.
// frac is clamped to [0,1].
func (w Window) At(frac float64) float64 {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return w.Start + (w.End-w.Start)*frac
}

// Windows splits [0,100] into contiguous windows proportional to each
// stage's duration. The last window always ends at exactly 100.
func Windows(stages []model.Stage) ([]Window, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	for i, s := range stages {
		if s.Duration <= 0 {
			return nil, fmt.Errorf("%w: stage %d (%q) has %v", ErrBadDuration, i, s.Label, s.Duration)
		}
	}

	total := float64(model.TotalDuration(stages))
	out := make([]Window, len(stages))
	var elapsed float64
	for i, s := range stages {
		start := elapsed / total * 100
		elapsed += float64(s.Duration)
		end := elapsed / total * 100
		if i == len(stages)-1 {
			end = 100
		}
		out[i] = Window{Start: start, End: end}
	}
	return out, nil
}
