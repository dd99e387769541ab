// Package quiz turns a raw prediction into the face-type verdict shown to
// the user.
package quiz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"facequiz/internal/model"
)

var ErrEmptyPrediction = errors.New("prediction has no classes")

// Kind is the face type a label maps to.
type Kind int

const (
	KindOther Kind = iota
	KindDog
	KindCat
)

func (k Kind) String() string {
	switch k {
	case KindDog:
		return "dog"
	case KindCat:
		return "cat"
	default:
		return "other"
	}
}

// Classify maps a model label to a Kind. Labels may be English, Korean or
// both, e.g. "강아지 (Dog)".
func Classify(label string) Kind {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "dog") || strings.Contains(l, "강아지"):
		return KindDog
	case strings.Contains(l, "cat") || strings.Contains(l, "고양이"):
		return KindCat
	default:
		return KindOther
	}
}

// Winner returns the most probable class. On ties the earliest entry wins.
func Winner(p model.Prediction) (model.ClassProbability, error) {
	if len(p) == 0 {
		return model.ClassProbability{}, ErrEmptyPrediction
	}
	best := p[0]
	for _, c := range p[1:] {
		if c.Probability > best.Probability {
			best = c
		}
	}
	return best, nil
}

// Percent converts a probability to a whole percentage.
func Percent(p float64) int {
	return int(math.Round(p * 100))
}

// Verdict is the rendered outcome of one analysis.
type Verdict struct {
	Kind            Kind   `json:"kind"`
	Winner          string `json:"winner"`
	Confidence      int    `json:"confidence"`
	Headline        string `json:"headline"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description"`
	ConfidenceLabel string `json:"confidenceLabel"`
}

// Judge picks the winner and builds the copy for its kind.
func Judge(p model.Prediction) (Verdict, error) {
	w, err := Winner(p)
	if err != nil {
		return Verdict{}, err
	}
	v := Verdict{
		Kind:       Classify(w.ClassName),
		Winner:     w.ClassName,
		Confidence: Percent(w.Probability),
	}
	switch v.Kind {
	case KindDog:
		v.Headline = "결과는... 강아지상! 🐶"
		v.Title = "멍뭉미 폭발! 당신은 강아지상"
		v.Description = "사람을 좋아하고 애교가 철철 넘치는 당신! 주변에 행복 바이러스를 전파하는 당신은 천상 강아지상! 복슬복슬한 강아지처럼 포근하고 사랑스러운 매력을 가졌네요."
		v.ConfidenceLabel = "강아지상 확률"
	case KindCat:
		v.Headline = "결과는... 고양이상! 🐱"
		v.Title = "시크한 매력! 당신은 고양이상"
		v.Description = "알 수 없는 눈빛으로 시선을 사로잡는 당신! 츤데레 같지만, 한번 빠지면 헤어나올 수 없는 매력의 소유자군요. 도도하고 우아한 고양이처럼 모두가 당신에게 궁금증을 가질 거예요."
		v.ConfidenceLabel = "고양이상 확률"
	case KindOther:
		v.Headline = fmt.Sprintf("결과: %s", w.ClassName)
		v.Description = "분석이 완료되었습니다!"
		v.ConfidenceLabel = "확률"
	}
	return v, nil
}

// User-facing failure messages.
const (
	MsgModelLoadFailed = "모델을 로드하는 중 오류가 발생했습니다."
	MsgPredictFailed   = "얼굴 분석 중 오류가 발생했습니다. 다른 사진으로 시도해 보세요."
	MsgWebcamFailed    = "웹캠을 시작하는 중 오류가 발생했습니다."
	RetryLabel         = "다시하기"
)
