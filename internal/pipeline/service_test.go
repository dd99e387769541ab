package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"facequiz/internal/classifier"
	"facequiz/internal/model"
	"facequiz/internal/progress"
	"facequiz/internal/quiz"
	"facequiz/internal/session"
)

type recordingReporter struct {
	mu      sync.Mutex
	updates []progress.Update
	results []progress.Result
}

func (r *recordingReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recordingReporter) last() progress.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates[len(r.updates)-1]
}

// stepClock advances virtual time on every frame.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(16 * time.Millisecond)
	c.mu.Unlock()
	return nil
}

type fakeModel struct {
	pred    model.Prediction
	err     error
	block   bool          // wait for ctx before answering
	started chan struct{} // closed on the first Predict
	once    sync.Once
	calls   int
	mu      sync.Mutex
}

func (f *fakeModel) Predict(ctx context.Context, img image.Image) (model.Prediction, error) {
	f.mu.Lock()
	f.calls++
	block := f.block && f.calls == 1
	f.mu.Unlock()
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.pred, f.err
}

func (f *fakeModel) TotalClasses() int { return len(f.pred) }
func (f *fakeModel) Labels() []string  { return nil }
func (f *fakeModel) Close() error      { return nil }

func dogCat() model.Prediction {
	return model.Prediction{
		{ClassName: "강아지 (Dog)", Probability: 0.7},
		{ClassName: "고양이 (Cat)", Probability: 0.3},
	}
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newService(t *testing.T, m classifier.Model, rep progress.Reporter, opts ...Option) *Service {
	t.Helper()
	base := []Option{WithModel(m), WithClock(&stepClock{now: time.Unix(0, 0)}), WithReporter(rep)}
	s, err := NewService(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestSubmit_Success(t *testing.T) {
	rep := &recordingReporter{}
	s := newService(t, &fakeModel{pred: dogCat()}, rep)

	out, err := s.Submit(context.Background(), writePNG(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Verdict.Kind != quiz.KindDog || out.Verdict.Confidence != 70 {
		t.Errorf("verdict = %+v", out.Verdict)
	}
	if out.SessionID != 1 {
		t.Errorf("session = %d", out.SessionID)
	}
	last := rep.last()
	if last.Phase != progress.PhaseDone || last.Percent != 100 {
		t.Errorf("last update = %+v", last)
	}
	if len(rep.results) != 1 || rep.results[0].Err != nil || len(rep.results[0].Prediction) != 2 {
		t.Errorf("results = %+v", rep.results)
	}
}

func TestSubmit_Failures(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := writePNG(t)

	tests := []struct {
		name  string
		path  string
		model *fakeModel
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.png"), &fakeModel{pred: dogCat()}},
		{"undecodable", garbage, &fakeModel{pred: dogCat()}},
		{"model error", good, &fakeModel{err: fmt.Errorf("%w: boom", classifier.ErrPredict)}},
		{"empty prediction", good, &fakeModel{pred: model.Prediction{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := &recordingReporter{}
			s := newService(t, tc.model, rep)
			_, err := s.Submit(context.Background(), tc.path)
			if !errors.Is(err, classifier.ErrPredict) {
				t.Fatalf("err = %v, want ErrPredict", err)
			}
		})
	}
}

func TestSubmit_FailureHidesOverlay(t *testing.T) {
	rep := &recordingReporter{}
	s := newService(t, &fakeModel{err: classifier.ErrPredict}, rep)
	if _, err := s.Submit(context.Background(), writePNG(t)); err == nil {
		t.Fatal("expected error")
	}
	if last := rep.last(); last.Visible() || last.Phase != progress.PhaseError {
		t.Errorf("last update = %+v", last)
	}
	if len(rep.results) != 1 || rep.results[0].Err == nil {
		t.Errorf("results = %+v", rep.results)
	}
}

func TestSubmit_Timeout(t *testing.T) {
	rep := &recordingReporter{}
	s := newService(t, &fakeModel{pred: dogCat(), block: true}, rep, WithTimeout(20*time.Millisecond))
	_, err := s.Submit(context.Background(), writePNG(t))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestSubmit_NewerSubmissionSupersedes(t *testing.T) {
	rep := &recordingReporter{}
	m := &fakeModel{pred: dogCat(), block: true, started: make(chan struct{})}
	s := newService(t, m, rep)
	path := writePNG(t)

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), path)
		firstErr <- err
	}()
	<-m.started

	out, err := s.Submit(context.Background(), path)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if out.SessionID != 2 {
		t.Errorf("second session = %d", out.SessionID)
	}
	if err := <-firstErr; !errors.Is(err, session.ErrSuperseded) {
		t.Fatalf("first err = %v, want ErrSuperseded", err)
	}
	for _, r := range rep.results {
		if r.SessionID != 2 {
			t.Errorf("stale result reported: %+v", r)
		}
	}
}

func TestReset_CancelsRunningSubmission(t *testing.T) {
	m := &fakeModel{pred: dogCat(), block: true, started: make(chan struct{})}
	s := newService(t, m, &recordingReporter{})
	path := writePNG(t)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), path)
		errc <- err
	}()
	<-m.started
	s.Reset()

	select {
	case err := <-errc:
		if !errors.Is(err, session.ErrSuperseded) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not stop after Reset")
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(); err == nil {
		t.Error("expected error without a model")
	}
	bad := []model.Stage{{Icon: "x", Label: "x", Duration: 0}}
	if _, err := NewService(WithModel(&fakeModel{}), WithStages(bad)); err == nil {
		t.Error("expected error for zero-length stage")
	}
}

func TestBuildPlan(t *testing.T) {
	p, err := BuildPlan(model.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Backend != model.BackendHosted {
		t.Errorf("backend = %q", p.Backend)
	}
	if p.Endpoints.Metadata != model.DefaultModelURL+"metadata.json" {
		t.Errorf("metadata = %q", p.Endpoints.Metadata)
	}
	if len(p.Stages) != 5 || p.Total != 3300*time.Millisecond {
		t.Errorf("stages = %d total = %v", len(p.Stages), p.Total)
	}
	if p.Stages[4].Window.End != 100 {
		t.Errorf("last window = %+v", p.Stages[4].Window)
	}

	p, err = BuildPlan(model.Options{Backend: model.BackendONNX, ONNXModel: "faces.onnx"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ONNXModel != "faces.onnx" || p.Endpoints.Predict != "" {
		t.Errorf("onnx plan = %+v", p)
	}
}
