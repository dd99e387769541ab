// Package api exposes the quiz over HTTP: prediction, a streamed analysis
// that mirrors the terminal overlay, the theme preference and the lotto
// picker.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/lotto"
	"facequiz/internal/model"
	"facequiz/internal/pipeline"
	"facequiz/internal/progress"
	"facequiz/internal/quiz"
	"facequiz/internal/theme"
	"facequiz/internal/util/format"
)

// MaxUploadBytes bounds an uploaded image.
const MaxUploadBytes = 10 << 20

// MaxLottoSets bounds one lotto request.
const MaxLottoSets = 10

type Service struct {
	model   classifier.Model
	store   theme.Store
	stages  []model.Stage
	timeout time.Duration
	clock   func() analysis.Clock

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Service)

// WithClock supplies a fresh animation clock per streamed analysis.
func WithClock(fn func() analysis.Clock) Option {
	return func(s *Service) {
		s.clock = fn
	}
}

// WithRand fixes the lotto generator.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rng = r
	}
}

func NewService(m classifier.Model, store theme.Store, opts model.Options, extra ...Option) *Service {
	s := &Service{
		model:   m,
		store:   store,
		stages:  opts.Stages,
		timeout: opts.PredictTimeout,
	}
	fps := opts.FrameRate
	s.clock = func() analysis.Clock { return analysis.NewRealClock(fps) }
	for _, o := range extra {
		o(s)
	}
	if s.rng == nil {
		s.rng = lotto.NewRand()
	}
	if s.store == nil {
		s.store = &theme.MemoryStore{}
	}
	return s
}

func (s *Service) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Get("/metadata.json", RestHandler(s.Metadata))
	r.Get("/model.json", RestHandler(s.ModelDescriptor))
	r.Post("/predict", RestHandler(s.Predict))
	r.Post("/analyze", RestStreamHandler(s.Analyze))
	r.Route("/theme", func(r chi.Router) {
		r.Get("/", RestHandler(s.GetTheme))
		r.Post("/toggle", RestHandler(s.ToggleTheme))
	})
	r.Get("/lotto", RestHandler(s.Lotto))
}

// Metadata describes the served model in the hosted metadata.json shape, so
// another facequiz can use this server as its --model-url. predictUrl is
// relative to this document.
func (s *Service) Metadata(r *http.Request) (any, error) {
	return classifier.Metadata{
		Labels:      s.model.Labels(),
		ImageSize:   classifier.DefaultImageSize,
		ModelName:   "facequiz",
		PackageName: "facequiz",
		PredictURL:  "predict",
	}, nil
}

// ModelDescriptor answers the hosted model.json reachability check.
func (s *Service) ModelDescriptor(r *http.Request) (any, error) {
	return map[string]any{
		"format":  "facequiz-remote",
		"classes": s.model.TotalClasses(),
	}, nil
}

func readImage(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		limit := format.HumanizeBytes(MaxUploadBytes)
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, CodedErrorf(http.StatusBadRequest, "image exceeds %s", limit)
		}
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form (max %s): %v", limit, err)
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "missing form file 'image'")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read image: %v", err)
	}
	return data, nil
}

// Predict answers with the raw class probabilities, in the same shape the
// hosted model service uses.
func (s *Service) Predict(r *http.Request) (any, error) {
	data, err := readImage(r)
	if err != nil {
		return nil, err
	}
	img, err := classifier.Decode(data)
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	pred, err := s.model.Predict(ctx, img)
	if err != nil {
		slog.Error("prediction failed", "error", err)
		return nil, CodedErrorf(http.StatusBadGateway, "%s", quiz.MsgPredictFailed)
	}
	return pred, nil
}

// AnalyzeEvent is one line of the analysis stream.
type AnalyzeEvent struct {
	Type       string           `json:"type"` // "progress" or "result"
	Stage      int              `json:"stage"`
	Icon       string           `json:"icon,omitempty"`
	Label      string           `json:"label,omitempty"`
	Percent    int              `json:"percent"`
	Session    string           `json:"session,omitempty"`
	Verdict    *quiz.Verdict    `json:"verdict,omitempty"`
	Prediction model.Prediction `json:"prediction,omitempty"`
}

type chanReporter struct {
	ctx context.Context
	ch  chan<- AnalyzeEvent
}

func (c chanReporter) Update(u progress.Update) {
	if !u.Visible() {
		return
	}
	select {
	case c.ch <- AnalyzeEvent{Type: "progress", Stage: u.Stage, Icon: u.Icon, Label: u.Label, Percent: u.Percent}:
	case <-c.ctx.Done():
	}
}

func (c chanReporter) Result(progress.Result) {}

// Analyze streams the staged progress of one submission followed by its
// verdict.
func (s *Service) Analyze(r *http.Request) (StreamResponse, error) {
	data, err := readImage(r)
	if err != nil {
		return nil, err
	}

	return func(yield func(any, error) bool) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		events := make(chan AnalyzeEvent, 16)
		svc, err := pipeline.NewService(
			pipeline.WithModel(s.model),
			pipeline.WithStages(s.stages),
			pipeline.WithClock(s.clock()),
			pipeline.WithReporter(chanReporter{ctx: ctx, ch: events}),
			pipeline.WithTimeout(s.timeout),
		)
		if err != nil {
			yield(nil, CodedError(http.StatusInternalServerError, err))
			return
		}

		type done struct {
			out pipeline.Outcome
			err error
		}
		result := make(chan done, 1)
		go func() {
			out, err := svc.SubmitData(ctx, data)
			result <- done{out, err}
			close(events)
		}()

		for ev := range events {
			if !yield(ev, nil) {
				cancel()
				for range events {
				}
				return
			}
		}
		res := <-result
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) {
				return
			}
			yield(nil, CodedErrorf(http.StatusBadGateway, "%s", quiz.MsgPredictFailed))
			return
		}
		v := res.out.Verdict
		yield(AnalyzeEvent{
			Type:       "result",
			Stage:      len(svc.Stages()) - 1,
			Percent:    100,
			Session:    res.out.Trace.String(),
			Verdict:    &v,
			Prediction: res.out.Prediction,
		}, nil)
	}, nil
}

type themeResponse struct {
	Theme       theme.Theme `json:"theme"`
	ButtonLabel string      `json:"buttonLabel"`
}

func (s *Service) GetTheme(r *http.Request) (any, error) {
	t, err := s.store.Load()
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return themeResponse{Theme: t, ButtonLabel: t.ButtonLabel()}, nil
}

func (s *Service) ToggleTheme(r *http.Request) (any, error) {
	t, err := theme.Toggle(s.store)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return themeResponse{Theme: t, ButtonLabel: t.ButtonLabel()}, nil
}

type lottoParams struct {
	Sets int `schema:"sets"`
}

type lottoResponse struct {
	Sets    [][]int `json:"sets"`
	Buckets [][]int `json:"buckets"`
}

func (s *Service) Lotto(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[lottoParams](r)
	if err != nil {
		return nil, err
	}
	if _, ok := r.Form["sets"]; !ok {
		params.Sets = 1
	}
	if params.Sets < 1 || params.Sets > MaxLottoSets {
		return nil, CodedErrorf(http.StatusBadRequest, "sets must be between 1 and %d", MaxLottoSets)
	}

	s.rngMu.Lock()
	sets, err := lotto.Sets(s.rng, params.Sets)
	s.rngMu.Unlock()
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, fmt.Errorf("draw lotto: %w", err))
	}

	resp := lottoResponse{Sets: sets}
	for _, set := range sets {
		b := make([]int, len(set))
		for i, n := range set {
			b[i] = lotto.Bucket(n)
		}
		resp.Buckets = append(resp.Buckets, b)
	}
	return resp, nil
}
