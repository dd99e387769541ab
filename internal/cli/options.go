// Package cli validates and completes the options the commands run with.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"facequiz/internal/analysis"
	"facequiz/internal/dirs"
	"facequiz/internal/model"
	"facequiz/internal/util"
)

// ParseBackend accepts hosted or onnx, case-insensitively. Empty means hosted.
func ParseBackend(s string) (model.Backend, error) {
	switch b := model.Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "", model.BackendHosted:
		return model.BackendHosted, nil
	case model.BackendONNX:
		return b, nil
	default:
		return "", fmt.Errorf("invalid --backend: %q (valid: hosted|onnx)", s)
	}
}

// Normalize validates opts and fills in defaults: the model URL, the frame
// rate, the stage script, and the local ONNX files under the models dir.
func Normalize(opts model.Options) (model.Options, error) {
	b, err := ParseBackend(string(opts.Backend))
	if err != nil {
		return opts, err
	}
	opts.Backend = b

	if opts.FrameRate < 0 || opts.FrameRate > 240 {
		return opts, fmt.Errorf("invalid --frame-rate: %d (valid: 1-240, 0 for default)", opts.FrameRate)
	}
	if opts.FrameRate == 0 {
		opts.FrameRate = analysis.DefaultFrameRate
	}
	if opts.PredictTimeout < 0 {
		return opts, fmt.Errorf("invalid --predict-timeout: %v", opts.PredictTimeout)
	}

	if len(opts.Stages) == 0 {
		opts.Stages = model.DefaultStages()
	}
	if _, err := analysis.Windows(opts.Stages); err != nil {
		return opts, err
	}

	switch opts.Backend {
	case model.BackendHosted:
		if opts.ModelURL == "" {
			opts.ModelURL = model.DefaultModelURL
		}
		u, err := util.NormalizeModelURL(opts.ModelURL)
		if err != nil {
			return opts, err
		}
		opts.ModelURL = u.String()
	case model.BackendONNX:
		if opts.ONNXModel == "" || opts.ONNXMetadata == "" {
			if md, err := dirs.ModelsDir(); err == nil {
				opts.ONNXModel = orExisting(opts.ONNXModel, filepath.Join(md, "model.onnx"))
				opts.ONNXMetadata = orExisting(opts.ONNXMetadata, filepath.Join(md, "metadata.json"))
			}
		}
		if opts.ONNXModel == "" || opts.ONNXMetadata == "" {
			return opts, fmt.Errorf("onnx backend needs --onnx-model and --onnx-metadata")
		}
	}
	return opts, nil
}

func orExisting(v, candidate string) string {
	if v != "" {
		return v
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
