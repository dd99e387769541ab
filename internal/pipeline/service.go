// Package pipeline runs one quiz submission end to end: read the image,
// begin a session, animate the stage script while the model predicts, and
// judge the verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/model"
	"facequiz/internal/progress"
	"facequiz/internal/quiz"
	"facequiz/internal/session"
	"facequiz/internal/util"
)

// Service orchestrates read → animate+predict → judge.
type Service struct {
	model    classifier.Model
	stages   []model.Stage
	clock    analysis.Clock
	reporter progress.Reporter
	sessions *session.Controller
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithModel sets the classifier used as the prediction task.
func WithModel(m classifier.Model) Option {
	return func(s *Service) {
		s.model = m
	}
}

// WithStages overrides the default stage script.
func WithStages(st []model.Stage) Option {
	return func(s *Service) {
		s.stages = st
	}
}

// WithClock injects the animation clock (useful for testing).
func WithClock(c analysis.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithReporter attaches the display receiving overlay updates and results.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithSessions shares a session controller, so a submission here supersedes
// one started elsewhere (e.g. the live loop).
func WithSessions(c *session.Controller) Option {
	return func(s *Service) {
		s.sessions = c
	}
}

// WithTimeout bounds each prediction. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService constructs a Service, applying defaults for missing components.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.model == nil {
		return nil, fmt.Errorf("pipeline: a model is required")
	}
	if len(s.stages) == 0 {
		s.stages = model.DefaultStages()
	}
	if s.reporter == nil {
		s.reporter = progress.Discard{}
	}
	if s.sessions == nil {
		s.sessions = session.NewController()
	}
	if _, err := analysis.Windows(s.stages); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return s, nil
}

// Outcome is a completed submission.
type Outcome struct {
	SessionID  uint64
	Trace      uuid.UUID
	Prediction model.Prediction
	Verdict    quiz.Verdict
}

// Submit analyses the image file at path. Unreadable or undecodable files
// fail like any other prediction.
func (s *Service) Submit(ctx context.Context, path string) (Outcome, error) {
	return s.run(ctx, func() ([]byte, error) {
		return util.ReadUpload(path)
	})
}

// SubmitData analyses an already loaded image.
func (s *Service) SubmitData(ctx context.Context, data []byte) (Outcome, error) {
	return s.run(ctx, func() ([]byte, error) {
		return data, nil
	})
}

// Reset supersedes any running submission, returning the display to the
// upload prompt.
func (s *Service) Reset() {
	s.sessions.Reset()
}

// Sessions exposes the controller so displays can discard stale events.
func (s *Service) Sessions() *session.Controller {
	return s.sessions
}

// Stages returns the stage script in use.
func (s *Service) Stages() []model.Stage {
	return append([]model.Stage(nil), s.stages...)
}

func (s *Service) run(ctx context.Context, load func() ([]byte, error)) (Outcome, error) {
	sess := s.sessions.Begin(ctx)
	defer sess.End()
	out := Outcome{SessionID: sess.ID, Trace: sess.Trace}

	opts := []analysis.Option{analysis.WithReporter(s.reporter)}
	if s.clock != nil {
		opts = append(opts, analysis.WithClock(s.clock))
	}
	coord, err := analysis.New(s.stages, opts...)
	if err != nil {
		return out, err
	}

	started := time.Now()
	pred, err := coord.Run(sess, s.predictTask(load))
	if err != nil {
		if errors.Is(err, session.ErrSuperseded) {
			slog.Debug("submission superseded", "session", sess.ID, "trace", sess.Trace)
		} else {
			slog.Warn("analysis failed", "session", sess.ID, "trace", sess.Trace, "error", err)
		}
		return out, err
	}

	v, err := quiz.Judge(pred)
	if err != nil {
		return out, fmt.Errorf("%w: %w", classifier.ErrPredict, err)
	}
	out.Prediction = pred
	out.Verdict = v
	slog.Info("analysis complete",
		"session", sess.ID,
		"trace", sess.Trace,
		"winner", v.Winner,
		"confidence", v.Confidence,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return out, nil
}

func (s *Service) predictTask(load func() ([]byte, error)) analysis.Task {
	return func(ctx context.Context) (model.Prediction, error) {
		data, err := load()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", classifier.ErrPredict, err)
		}
		img, err := classifier.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", classifier.ErrPredict, err)
		}
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		pred, err := s.model.Predict(ctx, img)
		if err != nil {
			return nil, err
		}
		if len(pred) == 0 {
			return nil, fmt.Errorf("%w: %w", classifier.ErrPredict, quiz.ErrEmptyPrediction)
		}
		return pred, nil
	}
}
