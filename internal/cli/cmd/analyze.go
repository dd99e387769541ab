package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"facequiz/internal/classifier"
	"facequiz/internal/dirs"
	"facequiz/internal/model"
	"facequiz/internal/pipeline"
	"facequiz/internal/theme"
	"facequiz/internal/ui"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "analyze [image]",
		Short:         "Analyze a photo and reveal the face type",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runAnalyze,
	}
	bindAnalyzeFlags(cmd.Flags())
	return cmd
}

func bindAnalyzeFlags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "Print the verdict as JSON (implies --no-ui)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts := optionsFrom(cmd)
	asJSON, _ := cmd.Flags().GetBool("json")

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	if useTUI(opts) && !asJSON {
		return exitFor(analyzeTUI(cmd.Context(), opts, path))
	}

	if path == "" {
		return &ExitError{Code: ExitCLIError, Err: errors.New("an image path is required without a terminal (facequiz analyze <image>)")}
	}
	if _, err := os.Stat(path); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("cannot read image: %w", err)}
	}
	return exitFor(analyzePlain(cmd, opts, path, asJSON))
}

func analyzeTUI(ctx context.Context, opts model.Options, path string) error {
	restore := tuiLogging()
	defer restore()

	return ui.Run(ctx, ui.Config{
		Options: opts,
		Load: func(ctx context.Context) (classifier.Model, error) {
			return classifier.Load(ctx, opts)
		},
		Store: preferenceStore(),
		Path:  path,
	})
}

func analyzePlain(cmd *cobra.Command, opts model.Options, path string, asJSON bool) error {
	ctx := cmd.Context()
	m, err := classifier.Load(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			slog.Warn("close model", "error", cerr)
		}
	}()

	svc, err := pipeline.NewService(
		pipeline.WithModel(m),
		pipeline.WithStages(opts.Stages),
		pipeline.WithReporter(ui.NewPlainReporter(cmd.ErrOrStderr())),
		pipeline.WithTimeout(opts.PredictTimeout),
	)
	if err != nil {
		return err
	}
	return ui.SubmitPlain(ctx, svc, path, cmd.OutOrStdout(), asJSON)
}

// preferenceStore is the theme store in the state directory, or an
// in-memory one when that directory cannot be resolved.
func preferenceStore() theme.Store {
	p, err := dirs.PreferencesPath()
	if err != nil {
		slog.Warn("preferences unavailable; theme will not persist", "error", err)
		return &theme.MemoryStore{}
	}
	return theme.NewFileStore(p)
}
