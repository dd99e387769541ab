package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// FindFFmpeg returns the path to the ffmpeg binary used for webcam capture.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find ffmpeg at %q", customPath)
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find ffmpeg in PATH; install ffmpeg to capture from a webcam device")
}

// ONNXRuntimeLibName is the platform's onnxruntime shared library file name.
func ONNXRuntimeLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}

// FindONNXRuntime resolves the onnxruntime shared library. An explicit path
// must exist; otherwise ONNXRUNTIME_LIB and a few conventional locations are
// searched.
func FindONNXRuntime(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err != nil {
			return "", fmt.Errorf("could not find onnxruntime library at %q", customPath)
		}
		return customPath, nil
	}
	if env := os.Getenv("ONNXRUNTIME_LIB"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
	}
	name := ONNXRuntimeLibName()
	for _, dir := range []string{".", "/usr/local/lib", "/usr/lib", "/opt/homebrew/lib"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("could not find %s; set --onnx-lib or ONNXRUNTIME_LIB", name)
}
