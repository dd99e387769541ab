package dirs

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLinuxXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout applies to linux only")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(base, "cfg", "facequiz")},
		{"data", DataDir, filepath.Join(base, "data", "facequiz")},
		{"state", StateDir, filepath.Join(base, "state", "facequiz")},
		{"preferences", PreferencesPath, filepath.Join(base, "state", "facequiz", "preferences.yaml")},
		{"log", LogPath, filepath.Join(base, "state", "facequiz", "facequiz.log")},
		{"models", ModelsDir, filepath.Join(base, "data", "facequiz", "models")},
	}
	for _, tc := range tests {
		got, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, got, tc.want)
		}
	}

	if err := EnsureAll(); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
}

func TestLinuxHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout applies to linux only")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	got, err := StateDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join(".local", "state", "facequiz")) {
		t.Errorf("StateDir = %q", got)
	}
}

func TestEnsure_Empty(t *testing.T) {
	if err := Ensure(""); err == nil {
		t.Error("expected error")
	}
}
