package progress

import "facequiz/internal/model"

// Phase identifies the visible state of the analysis overlay.
type Phase string

const (
	PhaseAnalyzing Phase = "analyzing" // overlay visible
	PhaseDone      Phase = "done"      // overlay hidden, result follows
	PhaseError     Phase = "error"     // overlay hidden, failure message follows
)

// Update conveys one frame of the analysis overlay for a session.
// Percent is the rounded overall progress, 0..100.
type Update struct {
	SessionID uint64
	Phase     Phase
	Stage     int // index into the stage script
	Icon      string
	Label     string
	Percent   int
}

// Visible reports whether the overlay is shown for this update.
func (u Update) Visible() bool {
	return u.Phase == PhaseAnalyzing
}

// Result is emitted once per session when both the animation and the
// prediction have settled.
type Result struct {
	SessionID  uint64
	Prediction model.Prediction
	Err        error // nil on success
}

// Reporter is implemented by displays interested in analysis events.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Discard is a Reporter that drops every event.
type Discard struct{}

func (Discard) Update(Update) {}
func (Discard) Result(Result) {}
