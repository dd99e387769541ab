package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := map[string]Theme{
		"light":   Light,
		"Light":   Dark,
		"LIGHT":   Dark,
		" light ": Dark,
		"dark":    Dark,
		"":        Dark,
		"sepia":   Dark,
	}
	for in, want := range tests {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestButtonLabel(t *testing.T) {
	if got := Light.ButtonLabel(); got != "다크모드" {
		t.Errorf("Light label = %q", got)
	}
	if got := Dark.ButtonLabel(); got != "라이트모드" {
		t.Errorf("Dark label = %q", got)
	}
}

func TestFileStore_MissingFileIsDark(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "preferences.yaml"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Dark {
		t.Errorf("Load = %q, want dark", got)
	}
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	for _, start := range []Theme{Light, Dark} {
		t.Run(string(start), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state", "preferences.yaml")
			s := NewFileStore(path)
			if err := s.Save(start); err != nil {
				t.Fatalf("Save: %v", err)
			}

			mid, err := Toggle(s)
			if err != nil {
				t.Fatalf("Toggle: %v", err)
			}
			if mid != start.Toggle() {
				t.Errorf("after one toggle = %q", mid)
			}
			end, err := Toggle(s)
			if err != nil {
				t.Fatalf("Toggle: %v", err)
			}
			if end != start {
				t.Errorf("after two toggles = %q, want %q", end, start)
			}

			// A fresh store reads what was persisted.
			got, err := NewFileStore(path).Load()
			if err != nil {
				t.Fatal(err)
			}
			if got != start {
				t.Errorf("persisted = %q, want %q", got, start)
			}
		})
	}
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	if err := os.WriteFile(path, []byte("lotto_sets: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewFileStore(path).Save(Light); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "lotto_sets") || !strings.Contains(string(data), "light") {
		t.Errorf("file = %q", data)
	}
}

func TestMemoryStore_Toggle(t *testing.T) {
	m := &MemoryStore{}
	got, err := Toggle(m)
	if err != nil || got != Light {
		t.Fatalf("Toggle = %q, %v", got, err)
	}
}
