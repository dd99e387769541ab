package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "facequiz"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// xdgDir resolves a per-user directory: macOS uses macPath under the home
// directory, Linux honours xdgEnv before falling back to linuxPath, and
// other systems use fallback.
func xdgDir(macPath []string, xdgEnv string, linuxPath []string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{home}, macPath...)...), nil
	case "linux":
		if xdg := os.Getenv(xdgEnv); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(append([]string{home}, linuxPath...)...), nil
	default:
		return fallback()
	}
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/facequiz or ~/.config/facequiz
// - macOS: ~/Library/Application Support/facequiz
// - Windows: %AppData%/facequiz
func ConfigDir() (string, error) {
	return xdgDir(
		[]string{"Library", "Application Support", AppName()},
		"XDG_CONFIG_HOME",
		[]string{".config", AppName()},
		func() (string, error) {
			cfg, err := os.UserConfigDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(cfg, AppName()), nil
		},
	)
}

// DataDir returns the app's data directory, where local models live.
// - Linux: $XDG_DATA_HOME/facequiz or ~/.local/share/facequiz
// - macOS: ~/Library/Application Support/facequiz
func DataDir() (string, error) {
	return xdgDir(
		[]string{"Library", "Application Support", AppName()},
		"XDG_DATA_HOME",
		[]string{".local", "share", AppName()},
		ConfigDir,
	)
}

// StateDir returns the app's state directory (preferences, logs).
// - Linux: $XDG_STATE_HOME/facequiz or ~/.local/state/facequiz
// - macOS: ~/Library/Application Support/facequiz/state
// - Windows: %LocalAppData%/facequiz/state (fallback to ConfigDir/state)
func StateDir() (string, error) {
	return xdgDir(
		[]string{"Library", "Application Support", AppName(), "state"},
		"XDG_STATE_HOME",
		[]string{".local", "state", AppName()},
		func() (string, error) {
			if la := os.Getenv("LOCALAPPDATA"); la != "" {
				return filepath.Join(la, AppName(), "state"), nil
			}
			cfg, err := ConfigDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(cfg, "state"), nil
		},
	)
}

// PreferencesPath is the file holding the persisted theme.
func PreferencesPath() (string, error) {
	s, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(s, "preferences.yaml"), nil
}

// LogPath is where logs go while the TUI owns the terminal.
func LogPath() (string, error) {
	s, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(s, "facequiz.log"), nil
}

// ModelsDir is searched for model.onnx and metadata.json when no paths are
// given.
func ModelsDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "models"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures config, data, and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, DataDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
