package format

import "testing"

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "under 1KB", bytes: 1023, want: "1023 B"},
		{name: "exactly 1KB", bytes: 1024, want: "1.0 KB"},
		{name: "1.5 KB", bytes: 1536, want: "1.5 KB"},
		{name: "typical photo", bytes: 3 * 1024 * 1024, want: "3.0 MB"},
		{name: "1.5 GB", bytes: 1536 * 1024 * 1024, want: "1.5 GB"},
		{name: "beyond TB stays in TB", bytes: 2048 * 1024 * 1024 * 1024 * 1024, want: "2048.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeBytes(tt.bytes); got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestPercentAndMeter(t *testing.T) {
	if got := Percent(70); got != "70%" {
		t.Errorf("Percent(70) = %q", got)
	}
	if got := Percent(130); got != "100%" {
		t.Errorf("Percent(130) = %q", got)
	}
	if got := Meter(50, 4); got != "██░░" {
		t.Errorf("Meter(50, 4) = %q", got)
	}
	if got := Meter(-5, 3); got != "░░░" {
		t.Errorf("Meter(-5, 3) = %q", got)
	}
	if got := Meter(100, 0); got != "" {
		t.Errorf("Meter(100, 0) = %q", got)
	}
}
