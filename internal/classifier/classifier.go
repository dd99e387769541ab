// Package classifier wraps the image-classification model the quiz
// delegates prediction to.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"

	"facequiz/internal/model"
	"facequiz/internal/util"
)

var (
	// ErrModelLoad marks failures loading the model or its metadata.
	ErrModelLoad = errors.New("model load failed")
	// ErrPredict marks failures of a single prediction call.
	ErrPredict = errors.New("prediction failed")
)

// Model is a loaded classifier.
type Model interface {
	// Predict returns one probability per class, in the model's class order.
	Predict(ctx context.Context, img image.Image) (model.Prediction, error)
	// TotalClasses is the number of classes Predict reports.
	TotalClasses() int
	Labels() []string
	Close() error
}

// Load opens the backend selected in opts.
func Load(ctx context.Context, opts model.Options) (Model, error) {
	switch opts.Backend {
	case model.BackendHosted, "":
		base := opts.ModelURL
		if base == "" {
			base = model.DefaultModelURL
		}
		ep, err := util.ModelEndpoints(base, opts.MetadataURL, opts.PredictURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		return LoadHosted(ctx, ep)
	case model.BackendONNX:
		return LoadONNX(opts.ONNXModel, opts.ONNXMetadata, opts.ONNXLibrary)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q (valid: hosted|onnx)", ErrModelLoad, opts.Backend)
	}
}
