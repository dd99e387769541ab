package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"facequiz/internal/classifier"
	"facequiz/internal/dirs"
	"facequiz/internal/model"
	"facequiz/internal/util"
	"facequiz/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose the model, ffmpeg and onnxruntime setup",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := optionsFrom(cmd)
			out := cmd.OutOrStdout()

			if p, err := dirs.ConfigDir(); err == nil {
				fmt.Fprintf(out, "Config dir:  %s\n", p)
			}
			if p, err := dirs.PreferencesPath(); err == nil {
				fmt.Fprintf(out, "Preferences: %s\n", p)
			}
			if p, err := dirs.ModelsDir(); err == nil {
				fmt.Fprintf(out, "Models dir:  %s\n", p)
			}

			ff, ferr := deps.FindFFmpeg("")
			report(out, "FFmpeg:     ", ff, ferr, "only needed for `facequiz live` camera capture")

			lib, lerr := deps.FindONNXRuntime(opts.ONNXLibrary)
			report(out, "onnxruntime:", lib, lerr, "only needed for --backend onnx")
			if opts.Backend == model.BackendONNX && lerr != nil {
				return &ExitError{Code: ExitMissingDep, Err: lerr}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			desc, merr := checkModel(ctx, opts)
			report(out, "Model:      ", desc, merr, "")
			if merr != nil {
				return exitFor(merr)
			}
			return nil
		},
	}
}

// checkModel confirms the selected model can be loaded without running a
// prediction.
func checkModel(ctx context.Context, opts model.Options) (string, error) {
	if opts.Backend == model.BackendONNX {
		meta, err := classifier.ReadONNXMetadata(opts.ONNXMetadata)
		if err != nil {
			return "", fmt.Errorf("%w: %w", classifier.ErrModelLoad, err)
		}
		return fmt.Sprintf("%s [%s]", opts.ONNXModel, strings.Join(meta.Classes, ", ")), nil
	}
	ep, err := util.ModelEndpoints(opts.ModelURL, opts.MetadataURL, opts.PredictURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", classifier.ErrModelLoad, err)
	}
	h, err := classifier.LoadHosted(ctx, ep)
	if err != nil {
		return "", err
	}
	defer h.Close()
	return fmt.Sprintf("%s [%s] → %s", ep.Model, strings.Join(h.Labels(), ", "), h.Endpoints().Predict), nil
}

func report(w io.Writer, name, value string, err error, hint string) {
	if err != nil {
		if hint != "" {
			fmt.Fprintf(w, "%s ✗ %v (%s)\n", name, err, hint)
			return
		}
		fmt.Fprintf(w, "%s ✗ %v\n", name, err)
		return
	}
	fmt.Fprintf(w, "%s ✓ %s\n", name, value)
}
