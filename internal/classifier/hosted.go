package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"facequiz/internal/model"
	"facequiz/internal/util"
)

// ErrNoPredictEndpoint means neither the options nor the model metadata name
// a prediction endpoint. Static model hosts serve weights only.
var ErrNoPredictEndpoint = errors.New("model serves no prediction endpoint; set --predict-url (e.g. a `facequiz serve` instance's /api/predict) or use --backend onnx")

// Metadata mirrors the hosted model's metadata.json fields we use.
// PredictURL, absolute or relative to metadata.json, is set by model
// servers that accept uploads, such as `facequiz serve`.
type Metadata struct {
	Labels      []string `json:"labels"`
	ImageSize   int      `json:"imageSize"`
	ModelName   string   `json:"modelName"`
	PackageName string   `json:"packageName"`
	TMVersion   string   `json:"tmVersion"`
	PredictURL  string   `json:"predictUrl,omitempty"`
}

// Hosted calls a model served over HTTP.
type Hosted struct {
	client *resty.Client
	ep     util.Endpoints
	meta   Metadata
}

// HostedOption configures LoadHosted.
type HostedOption func(*Hosted)

// WithRestyClient replaces the HTTP client.
func WithRestyClient(c *resty.Client) HostedOption {
	return func(h *Hosted) {
		h.client = c
	}
}

// LoadHosted fetches the model metadata, settles the prediction endpoint and
// checks that the model descriptor is reachable. Without a predict URL in ep
// the metadata must advertise one, or loading fails with
// ErrNoPredictEndpoint.
func LoadHosted(ctx context.Context, ep util.Endpoints, opts ...HostedOption) (*Hosted, error) {
	h := &Hosted{
		ep: ep,
		client: resty.New().
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "facequiz"),
	}
	for _, o := range opts {
		o(h)
	}
	client := h.client

	res, err := client.R().SetContext(ctx).Get(ep.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch metadata: %w", ErrModelLoad, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: fetch metadata: %s returned %d", ErrModelLoad, ep.Metadata, res.StatusCode())
	}
	var meta Metadata
	if err := json.Unmarshal(res.Body(), &meta); err != nil {
		return nil, fmt.Errorf("%w: parse metadata: %w", ErrModelLoad, err)
	}
	if len(meta.Labels) == 0 {
		return nil, fmt.Errorf("%w: metadata lists no labels", ErrModelLoad)
	}
	if meta.ImageSize <= 0 {
		meta.ImageSize = DefaultImageSize
	}
	if h.ep.Predict == "" {
		if meta.PredictURL == "" {
			return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, ep.Metadata, ErrNoPredictEndpoint)
		}
		p, err := util.ResolveRef(ep.Metadata, meta.PredictURL)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata predictUrl: %w", ErrModelLoad, err)
		}
		h.ep.Predict = p
	}

	res, err = client.R().SetContext(ctx).Get(ep.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch model descriptor: %w", ErrModelLoad, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: fetch model descriptor: %s returned %d", ErrModelLoad, ep.Model, res.StatusCode())
	}

	slog.Info("model loaded", "backend", "hosted", "model", ep.Model, "predict", h.ep.Predict, "classes", meta.Labels, "image_size", meta.ImageSize)
	h.meta = meta
	return h, nil
}

func (h *Hosted) TotalClasses() int {
	return len(h.meta.Labels)
}

func (h *Hosted) Labels() []string {
	return append([]string(nil), h.meta.Labels...)
}

func (h *Hosted) Metadata() Metadata {
	return h.meta
}

// Endpoints returns the resolved model URLs, including the predict URL.
func (h *Hosted) Endpoints() util.Endpoints {
	return h.ep
}

// Predict uploads img, resized to the model's input size, and returns the
// per-class probabilities.
func (h *Hosted) Predict(ctx context.Context, img image.Image) (model.Prediction, error) {
	data, err := EncodeJPEG(Square(img, h.meta.ImageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredict, err)
	}

	res, err := h.client.R().
		SetContext(ctx).
		SetFileReader("image", "image.jpg", bytes.NewReader(data)).
		Post(h.ep.Predict)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	if !res.IsSuccess() {
		slog.Error("model service returned error", "status_code", res.StatusCode(), "body", res.String())
		return nil, fmt.Errorf("%w: %s returned %d", ErrPredict, h.ep.Predict, res.StatusCode())
	}
	// Decoded by hand: servers do not always label JSON as such.
	var out model.Prediction
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: parse prediction: %w", ErrPredict, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty prediction", ErrPredict)
	}
	return out, nil
}

func (h *Hosted) Close() error {
	return nil
}
