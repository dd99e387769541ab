package util

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints are the hosted model's resource URLs.
type Endpoints struct {
	Model    string // model.json descriptor
	Metadata string // metadata.json with labels and input size
	Predict  string // inference endpoint accepting an image upload; empty until known
}

// NormalizeModelURL parses a hosted model base URL, defaulting the scheme to
// https and guaranteeing a trailing slash so relative resources resolve
// beneath it.
func NormalizeModelURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("model URL is empty")
	}
	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("https://" + raw); e2 == nil {
			u = u2
		}
	}
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid model URL %q", raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported model URL scheme %q in %q (want http or https)", u.Scheme, raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// ModelEndpoints derives the model resources from a base URL. A non-empty
// metadata override replaces the derived URL. The predict URL is never
// derived: it is the override, or empty so the metadata can name it.
func ModelEndpoints(base, metadataOverride, predictOverride string) (Endpoints, error) {
	u, err := NormalizeModelURL(base)
	if err != nil {
		return Endpoints{}, err
	}
	ep := Endpoints{
		Model:    u.JoinPath("model.json").String(),
		Metadata: u.JoinPath("metadata.json").String(),
	}
	if metadataOverride != "" {
		ep.Metadata = metadataOverride
	}
	if predictOverride != "" {
		ep.Predict = predictOverride
	}
	return ep, nil
}

// ResolveRef resolves ref, absolute or relative, against base.
func ResolveRef(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid URL reference %q: %w", ref, err)
	}
	u := b.ResolveReference(r)
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported URL scheme %q in %q (want http or https)", u.Scheme, u)
	}
}
