package util

import "testing"

func TestModelEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		meta      string
		predict   string
		wantModel string
		wantMeta  string
		wantPred  string
		wantErr   bool
	}{
		{
			name:      "trailing slash",
			base:      "https://teachablemachine.withgoogle.com/models/KQmUJ34Ph/",
			wantModel: "https://teachablemachine.withgoogle.com/models/KQmUJ34Ph/model.json",
			wantMeta:  "https://teachablemachine.withgoogle.com/models/KQmUJ34Ph/metadata.json",
		},
		{
			name:      "no slash no scheme",
			base:      "models.example.com/face",
			wantModel: "https://models.example.com/face/model.json",
			wantMeta:  "https://models.example.com/face/metadata.json",
		},
		{
			name:      "overrides",
			base:      "http://127.0.0.1:9000/m/",
			meta:      "http://cdn.local/meta.json",
			predict:   "http://infer.local/v1/classify",
			wantModel: "http://127.0.0.1:9000/m/model.json",
			wantMeta:  "http://cdn.local/meta.json",
			wantPred:  "http://infer.local/v1/classify",
		},
		{name: "empty", base: "  ", wantErr: true},
		{name: "bad scheme", base: "ftp://host/model/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := ModelEndpoints(tt.base, tt.meta, tt.predict)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", ep)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ep.Model != tt.wantModel || ep.Metadata != tt.wantMeta || ep.Predict != tt.wantPred {
				t.Errorf("endpoints = %+v", ep)
			}
		})
	}
}

func TestResolveRef(t *testing.T) {
	tests := []struct {
		base, ref, want string
		wantErr         bool
	}{
		{"http://127.0.0.1:8080/api/metadata.json", "predict", "http://127.0.0.1:8080/api/predict", false},
		{"http://127.0.0.1:8080/api/metadata.json", "/v1/classify", "http://127.0.0.1:8080/v1/classify", false},
		{"http://a.local/m/metadata.json", "https://infer.local/p", "https://infer.local/p", false},
		{"http://a.local/m/metadata.json", "ftp://infer.local/p", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveRef(tt.base, tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveRef(%q, %q) expected error", tt.base, tt.ref)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveRef(%q, %q) = %q, %v; want %q", tt.base, tt.ref, got, err, tt.want)
		}
	}
}
