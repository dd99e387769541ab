package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"facequiz/internal/live"
	"facequiz/internal/pipeline"
	"facequiz/internal/progress"
	"facequiz/internal/quiz"
	"facequiz/internal/util/format"
)

// PlainReporter renders the analysis overlay as a single progress bar, for
// non-interactive terminals.
type PlainReporter struct {
	mu    sync.Mutex
	w     io.Writer
	bar   *progressbar.ProgressBar
	stage int
}

func NewPlainReporter(w io.Writer) *PlainReporter {
	if w == nil {
		w = os.Stderr
	}
	return &PlainReporter{w: w, stage: -1}
}

func (r *PlainReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !u.Visible() {
		if r.bar == nil {
			return
		}
		if u.Phase == progress.PhaseDone {
			_ = r.bar.Set(100)
			_ = r.bar.Finish()
		} else {
			_ = r.bar.Exit()
		}
		fmt.Fprintln(r.w)
		r.bar = nil
		r.stage = -1
		return
	}

	if r.bar == nil {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
		)
	}
	if u.Stage != r.stage {
		r.stage = u.Stage
		r.bar.Describe(u.Icon + " " + u.Label)
	}
	_ = r.bar.Set(u.Percent)
}

func (r *PlainReporter) Result(progress.Result) {}

// SubmitPlain runs one submission with a PlainReporter on stderr and writes
// the verdict to out.
func SubmitPlain(ctx context.Context, svc *pipeline.Service, path string, out io.Writer, asJSON bool) error {
	res, err := svc.Submit(ctx, path)
	if err != nil {
		return err
	}
	return WriteOutcome(out, res, asJSON)
}

// WriteOutcome prints a verdict as text or JSON.
func WriteOutcome(w io.Writer, o pipeline.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Session    string       `json:"session"`
			Verdict    quiz.Verdict `json:"verdict"`
			Prediction any          `json:"prediction"`
		}{o.Trace.String(), o.Verdict, o.Prediction})
	}

	v := o.Verdict
	var b strings.Builder
	b.WriteString(v.Headline + "\n")
	if v.Title != "" {
		b.WriteString(v.Title + "\n")
	}
	b.WriteString(v.Description + "\n\n")
	fmt.Fprintf(&b, "%s  %s %s\n", v.ConfidenceLabel, format.Meter(v.Confidence, 30), format.Percent(v.Confidence))
	_, err := io.WriteString(w, b.String())
	return err
}

// PlainFrames prints each live prediction as one line of
// "className: probability" pairs.
func PlainFrames(w io.Writer) func(live.Frame) {
	return func(f live.Frame) {
		parts := make([]string, 0, len(f.Prediction))
		for _, c := range f.Prediction {
			parts = append(parts, fmt.Sprintf("%s: %.2f", c.ClassName, c.Probability))
		}
		fmt.Fprintf(w, "#%d  %s\n", f.Seq, strings.Join(parts, "  "))
	}
}
