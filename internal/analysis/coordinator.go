package analysis

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"facequiz/internal/model"
	"facequiz/internal/progress"
	"facequiz/internal/session"
)

// Task is the asynchronous prediction joined with the animation. It must
// return exactly once.
type Task func(ctx context.Context) (model.Prediction, error)

// Coordinator animates a stage script while a Task runs.
type Coordinator struct {
	stages   []model.Stage
	windows  []Window
	clock    Clock
	reporter progress.Reporter
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the frame clock. Defaults to a 60 fps RealClock.
func WithClock(c Clock) Option {
	return func(co *Coordinator) {
		co.clock = c
	}
}

// WithReporter sets the display receiving overlay updates and the result.
func WithReporter(r progress.Reporter) Option {
	return func(co *Coordinator) {
		co.reporter = r
	}
}

// New validates the stage script and builds a Coordinator.
func New(stages []model.Stage, opts ...Option) (*Coordinator, error) {
	windows, err := Windows(stages)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		stages:  append([]model.Stage(nil), stages...),
		windows: windows,
	}
	for _, o := range opts {
		o(c)
	}
	if c.clock == nil {
		c.clock = NewRealClock(DefaultFrameRate)
	}
	if c.reporter == nil {
		c.reporter = progress.Discard{}
	}
	return c, nil
}

// Stages returns a copy of the script.
func (c *Coordinator) Stages() []model.Stage {
	return append([]model.Stage(nil), c.stages...)
}

// Run plays the full stage script concurrently with task and waits for both.
// The prediction is returned, and reported, only after the animation has
// reached 100% and the task has settled. A task error stops the animation at
// its next frame and hides the overlay. If sess is superseded while running,
// Run returns session.ErrSuperseded and reports nothing further.
func (c *Coordinator) Run(sess *session.Session, task Task) (model.Prediction, error) {
	rep := currentOnly{sess: sess, next: c.reporter}
	last := len(c.stages) - 1

	g, gctx := errgroup.WithContext(sess.Context())
	var pred model.Prediction
	g.Go(func() error {
		return c.animate(gctx, sess.ID, rep)
	})
	g.Go(func() error {
		p, err := task(gctx)
		if err != nil {
			return err
		}
		pred = p
		return nil
	})

	if err := g.Wait(); err != nil {
		err = session.Cause(sess, err)
		slog.Debug("analysis failed", "session", sess.ID, "trace", sess.Trace, "error", err)
		rep.Update(progress.Update{SessionID: sess.ID, Phase: progress.PhaseError, Stage: last})
		rep.Result(progress.Result{SessionID: sess.ID, Err: err})
		return nil, err
	}

	rep.Update(progress.Update{
		SessionID: sess.ID,
		Phase:     progress.PhaseDone,
		Stage:     last,
		Icon:      c.stages[last].Icon,
		Label:     c.stages[last].Label,
		Percent:   100,
	})
	rep.Result(progress.Result{SessionID: sess.ID, Prediction: pred})
	return pred, nil
}

func (c *Coordinator) animate(ctx context.Context, id uint64, rep progress.Reporter) error {
	for i, st := range c.stages {
		w := c.windows[i]
		began := c.clock.Now()
		slog.Debug("analysis stage", "session", id, "stage", i, "label", st.Label)
		for {
			frac := float64(c.clock.Now().Sub(began)) / float64(st.Duration)
			if frac > 1 {
				frac = 1
			}
			rep.Update(progress.Update{
				SessionID: id,
				Phase:     progress.PhaseAnalyzing,
				Stage:     i,
				Icon:      st.Icon,
				Label:     st.Label,
				Percent:   int(math.Round(w.At(frac))),
			})
			if frac >= 1 {
				break
			}
			if err := c.clock.Frame(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// currentOnly drops events once its session has been superseded.
type currentOnly struct {
	sess *session.Session
	next progress.Reporter
}

func (r currentOnly) Update(u progress.Update) {
	if r.sess.Current() {
		r.next.Update(u)
	}
}

func (r currentOnly) Result(res progress.Result) {
	if r.sess.Current() {
		r.next.Result(res)
	}
}
