package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"facequiz/internal/dirs"
	"facequiz/internal/model"
)

// EnvPrefix namespaces environment overrides, e.g. FACEQUIZ_MODEL_URL.
const EnvPrefix = "FACEQUIZ"

// flagKeys maps persistent flags to Viper keys.
var flagKeys = map[string]string{
	"backend":         "backend",
	"model-url":       "model_url",
	"metadata-url":    "metadata_url",
	"predict-url":     "predict_url",
	"onnx-model":      "onnx_model",
	"onnx-metadata":   "onnx_metadata",
	"onnx-lib":        "onnx_lib",
	"frame-rate":      "frame_rate",
	"predict-timeout": "predict_timeout",
	"no-ui":           "no_ui",
	"verbose":         "verbose",
	"log-format":      "log_format",
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	// A .env in the working directory seeds the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring unreadable .env", "error", err)
	}

	_ = dirs.EnsureAll()

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	for flag, key := range flagKeys {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", string(model.BackendHosted))
	v.SetDefault("model_url", model.DefaultModelURL)
	v.SetDefault("frame_rate", 60)
	v.SetDefault("predict_timeout", time.Duration(0))
	v.SetDefault("log_format", "text")
	v.SetDefault("serve.port", 8080)
}

// StageConfig is one entry of the `stages` config list.
type StageConfig struct {
	Icon       string `mapstructure:"icon"`
	Label      string `mapstructure:"label"`
	DurationMS int    `mapstructure:"duration_ms"`
}

// Resolve reads model.Options out of v. The stage script falls back to the
// defaults when the config does not define one.
func Resolve(v *viper.Viper) (model.Options, error) {
	opts := model.Options{
		Backend:        model.Backend(strings.ToLower(strings.TrimSpace(v.GetString("backend")))),
		ModelURL:       v.GetString("model_url"),
		MetadataURL:    v.GetString("metadata_url"),
		PredictURL:     v.GetString("predict_url"),
		ONNXModel:      v.GetString("onnx_model"),
		ONNXMetadata:   v.GetString("onnx_metadata"),
		ONNXLibrary:    v.GetString("onnx_lib"),
		FrameRate:      v.GetInt("frame_rate"),
		PredictTimeout: v.GetDuration("predict_timeout"),
		NoUI:           v.GetBool("no_ui"),
		Verbose:        v.GetBool("verbose"),
	}

	var stages []StageConfig
	if err := v.UnmarshalKey("stages", &stages); err != nil {
		return opts, fmt.Errorf("config: invalid stages: %w", err)
	}
	if len(stages) == 0 {
		opts.Stages = model.DefaultStages()
		return opts, nil
	}
	for i, s := range stages {
		if s.DurationMS <= 0 {
			return opts, fmt.Errorf("config: stage %d (%q) needs a positive duration_ms", i, s.Label)
		}
		opts.Stages = append(opts.Stages, model.Stage{
			Icon:     s.Icon,
			Label:    s.Label,
			Duration: time.Duration(s.DurationMS) * time.Millisecond,
		})
	}
	return opts, nil
}
