// Package live runs the webcam variant of the quiz: grab a frame, predict,
// emit, wait a frame, repeat until stopped.
package live

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/model"
)

// ErrWebcam marks failures acquiring or reading the camera.
var ErrWebcam = errors.New("webcam failed")

// Source is a camera. Setup acquires it, Play starts capture, and Update
// returns the current frame.
type Source interface {
	Setup(ctx context.Context) error
	Play(ctx context.Context) error
	Update(ctx context.Context) (image.Image, error)
	Close() error
}

// Frame is one prediction of the live loop.
type Frame struct {
	Seq        uint64
	At         time.Time
	Prediction model.Prediction
}

// Loop repeatedly classifies frames from a Source.
type Loop struct {
	source Source
	model  classifier.Model
	clock  analysis.Clock
	sink   func(Frame)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the frame pacing. Defaults to the display frame rate.
func WithClock(c analysis.Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithSink receives every prediction, in order.
func WithSink(fn func(Frame)) Option {
	return func(l *Loop) {
		l.sink = fn
	}
}

func NewLoop(src Source, m classifier.Model, opts ...Option) *Loop {
	l := &Loop{source: src, model: m}
	for _, o := range opts {
		o(l)
	}
	if l.clock == nil {
		l.clock = analysis.NewRealClock(analysis.DefaultFrameRate)
	}
	if l.sink == nil {
		l.sink = func(Frame) {}
	}
	return l
}

// Run acquires the source and loops until ctx is cancelled or Stop is
// called, both of which return nil. Camera failures wrap ErrWebcam and
// prediction failures wrap classifier.ErrPredict; either ends the loop.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		if err := l.source.Close(); err != nil {
			slog.Warn("close webcam", "error", err)
		}
	}()

	if err := l.source.Setup(ctx); err != nil {
		return fmt.Errorf("%w: setup: %w", ErrWebcam, err)
	}
	if err := l.source.Play(ctx); err != nil {
		return fmt.Errorf("%w: play: %w", ErrWebcam, err)
	}
	slog.Info("live loop started")

	var seq uint64
	for {
		if ctx.Err() != nil {
			return l.halted(seq)
		}
		img, err := l.source.Update(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return l.halted(seq)
			}
			return fmt.Errorf("%w: frame: %w", ErrWebcam, err)
		}
		pred, err := l.model.Predict(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return l.halted(seq)
			}
			if !errors.Is(err, classifier.ErrPredict) {
				err = fmt.Errorf("%w: %w", classifier.ErrPredict, err)
			}
			return err
		}
		seq++
		l.sink(Frame{Seq: seq, At: l.clock.Now(), Prediction: pred})

		if err := l.clock.Frame(ctx); err != nil {
			return l.halted(seq)
		}
	}
}

func (l *Loop) halted(frames uint64) error {
	slog.Info("live loop stopped", "frames", frames)
	return nil
}

// Stop halts a running loop, or prevents one from starting.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	if l.cancel != nil {
		l.cancel()
	}
}
