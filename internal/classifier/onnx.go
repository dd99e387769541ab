package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"facequiz/internal/model"
	"facequiz/internal/util/deps"
)

// ONNXMetadata describes a locally exported model.
type ONNXMetadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	InputName   string   `json:"input_name,omitempty"`
	OutputName  string   `json:"output_name,omitempty"`
}

// ReadONNXMetadata loads and validates a metadata file.
func ReadONNXMetadata(path string) (ONNXMetadata, error) {
	var meta ONNXMetadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse metadata: %w", err)
	}
	if len(meta.Classes) == 0 {
		return meta, fmt.Errorf("metadata lists no classes")
	}
	if len(meta.InputShape) == 0 || len(meta.OutputShape) == 0 {
		return meta, fmt.Errorf("metadata is missing input_shape or output_shape")
	}
	if meta.ImageSize <= 0 {
		meta.ImageSize = DefaultImageSize
	}
	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}
	if n := 3 * meta.ImageSize * meta.ImageSize; shapeSize(meta.InputShape) != n {
		return meta, fmt.Errorf("input_shape %v does not hold a 3x%dx%d image", meta.InputShape, meta.ImageSize, meta.ImageSize)
	}
	if shapeSize(meta.OutputShape) < len(meta.Classes) {
		return meta, fmt.Errorf("output_shape %v is smaller than %d classes", meta.OutputShape, len(meta.Classes))
	}
	return meta, nil
}

func shapeSize(shape []int64) int {
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}

// ONNX runs a model in-process through onnxruntime.
type ONNX struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	meta    ONNXMetadata
	envHeld bool
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnv(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnv() {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		if err := ort.DestroyEnvironment(); err != nil {
			slog.Warn("destroy onnxruntime environment", "error", err)
		}
	}
}

// LoadONNX opens modelPath with the class list from metadataPath. An empty
// libPath searches the usual install locations for the runtime library.
func LoadONNX(modelPath, metadataPath, libPath string) (*ONNX, error) {
	if modelPath == "" || metadataPath == "" {
		return nil, fmt.Errorf("%w: onnx backend needs --onnx-model and --onnx-metadata", ErrModelLoad)
	}
	meta, err := ReadONNXMetadata(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	lib, err := deps.FindONNXRuntime(libPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if err := acquireEnv(lib); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	m := &ONNX{meta: meta, envHeld: true}
	m.input, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: create input tensor: %w", ErrModelLoad, err)
	}
	m.output, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: create output tensor: %w", ErrModelLoad, err)
	}
	m.session, err = ort.NewAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{m.input}, []ort.ArbitraryTensor{m.output},
		nil)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: create session: %w", ErrModelLoad, err)
	}

	slog.Info("model loaded", "backend", "onnx", "model", modelPath, "runtime", lib, "classes", meta.Classes)
	return m, nil
}

func (m *ONNX) TotalClasses() int {
	return len(m.meta.Classes)
}

func (m *ONNX) Labels() []string {
	return append([]string(nil), m.meta.Classes...)
}

// Predict runs one inference. Calls are serialised because the session
// reuses its bound tensors.
func (m *ONNX) Predict(ctx context.Context, img image.Image) (model.Prediction, error) {
	data := ToCHW(img, m.meta.ImageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.session == nil {
		return nil, fmt.Errorf("%w: model is closed", ErrPredict)
	}
	copy(m.input.GetData(), data)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: inference: %w", ErrPredict, err)
	}

	out := m.output.GetData()
	pred := make(model.Prediction, len(m.meta.Classes))
	for i, name := range m.meta.Classes {
		pred[i] = model.ClassProbability{ClassName: name, Probability: float64(out[i])}
	}
	return pred, nil
}

func (m *ONNX) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.envHeld {
		m.envHeld = false
		releaseEnv()
	}
	return nil
}
