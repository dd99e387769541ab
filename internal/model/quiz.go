package model

import "time"

// Backend names the prediction backend.
type Backend string

const (
	BackendHosted Backend = "hosted"
	BackendONNX   Backend = "onnx"
)

// DefaultModelURL is the hosted face-type model the quiz was built against.
const DefaultModelURL = "https://teachablemachine.withgoogle.com/models/KQmUJ34Ph/"

// Options holds user-configurable runtime options as resolved from flags,
// environment and the config file.
type Options struct {
	Backend     Backend
	ModelURL    string // Base URL of the hosted model (trailing slash).
	MetadataURL string // Optional override; derived from ModelURL when empty.
	PredictURL  string // Optional override; derived from ModelURL when empty.

	ONNXModel    string // Path to a local .onnx file (BackendONNX).
	ONNXMetadata string // Path to the ONNX metadata JSON (BackendONNX).
	ONNXLibrary  string // Optional path to the onnxruntime shared library.

	FrameRate      int           // Animation frames per second.
	PredictTimeout time.Duration // 0 disables the timeout.
	Stages         []Stage       // Analysis script; DefaultStages when empty.

	NoUI    bool
	Verbose bool
}

// Stage is one scripted phase of the analysis animation.
type Stage struct {
	Icon     string
	Label    string
	Duration time.Duration
}

// DefaultStages returns the analysis script shown while a photo is judged.
func DefaultStages() []Stage {
	return []Stage{
		{Icon: "📤", Label: "이미지 로딩 중...", Duration: 500 * time.Millisecond},
		{Icon: "👤", Label: "얼굴 인식 중...", Duration: 800 * time.Millisecond},
		{Icon: "🔍", Label: "AI 분석 중...", Duration: 1000 * time.Millisecond},
		{Icon: "🧮", Label: "결과 계산 중...", Duration: 700 * time.Millisecond},
		{Icon: "✨", Label: "분석 완료!", Duration: 300 * time.Millisecond},
	}
}

// TotalDuration sums the stage durations.
func TotalDuration(stages []Stage) time.Duration {
	var total time.Duration
	for _, s := range stages {
		total += s.Duration
	}
	return total
}

// ClassProbability is one (label, probability) pair returned by a model.
type ClassProbability struct {
	ClassName   string  `json:"className"`
	Probability float64 `json:"probability"`
}

// Prediction is the ordered per-class output of a model. Probabilities lie in
// [0,1] but are not guaranteed to sum to 1.
type Prediction []ClassProbability
