package quiz

import (
	"errors"
	"strings"
	"testing"

	"facequiz/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"강아지 (Dog)", KindDog},
		{"DOG", KindDog},
		{"강아지", KindDog},
		{"고양이 (Cat)", KindCat},
		{"cat", KindCat},
		{"고양이", KindCat},
		{"Hamster", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.label); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestWinner_TieKeepsEarliest(t *testing.T) {
	p := model.Prediction{
		{ClassName: "first", Probability: 0.4},
		{ClassName: "second", Probability: 0.4},
		{ClassName: "third", Probability: 0.2},
	}
	w, err := Winner(p)
	if err != nil {
		t.Fatal(err)
	}
	if w.ClassName != "first" {
		t.Errorf("winner = %q, want first", w.ClassName)
	}
}

func TestWinner_Empty(t *testing.T) {
	if _, err := Winner(nil); !errors.Is(err, ErrEmptyPrediction) {
		t.Errorf("err = %v", err)
	}
	if _, err := Judge(model.Prediction{}); !errors.Is(err, ErrEmptyPrediction) {
		t.Errorf("Judge err = %v", err)
	}
}

func TestJudge(t *testing.T) {
	tests := []struct {
		name       string
		pred       model.Prediction
		wantKind   Kind
		wantWinner string
		wantPct    int
		wantHead   string
	}{
		{
			name: "dog wins",
			pred: model.Prediction{
				{ClassName: "강아지 (Dog)", Probability: 0.7},
				{ClassName: "고양이 (Cat)", Probability: 0.3},
			},
			wantKind:   KindDog,
			wantWinner: "강아지 (Dog)",
			wantPct:    70,
			wantHead:   "강아지상",
		},
		{
			name: "cat wins",
			pred: model.Prediction{
				{ClassName: "강아지 (Dog)", Probability: 0.124},
				{ClassName: "고양이 (Cat)", Probability: 0.876},
			},
			wantKind:   KindCat,
			wantWinner: "고양이 (Cat)",
			wantPct:    88,
			wantHead:   "고양이상",
		},
		{
			name: "other label",
			pred: model.Prediction{
				{ClassName: "Fox", Probability: 0.561},
				{ClassName: "고양이 (Cat)", Probability: 0.439},
			},
			wantKind:   KindOther,
			wantWinner: "Fox",
			wantPct:    56,
			wantHead:   "결과: Fox",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Judge(tt.pred)
			if err != nil {
				t.Fatal(err)
			}
			if v.Kind != tt.wantKind || v.Winner != tt.wantWinner || v.Confidence != tt.wantPct {
				t.Errorf("verdict = %+v", v)
			}
			if !strings.Contains(v.Headline, tt.wantHead) {
				t.Errorf("headline = %q, want it to contain %q", v.Headline, tt.wantHead)
			}
			if v.Description == "" || v.ConfidenceLabel == "" {
				t.Errorf("missing copy: %+v", v)
			}
		})
	}
}
