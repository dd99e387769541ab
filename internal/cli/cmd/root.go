package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"facequiz/internal/classifier"
	"facequiz/internal/cli"
	"facequiz/internal/config"
	"facequiz/internal/live"
	"facequiz/internal/model"
	"facequiz/internal/quiz"
)

const (
	ExitOK           = 0
	ExitCLIError     = 1
	ExitMissingDep   = 2
	ExitModelError   = 3
	ExitPredictError = 4
	ExitWebcamError  = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "facequiz [image]",
		Short: "Dog or cat? A face-type quiz for the terminal",
		Long: "facequiz runs a photo through an image classifier and tells you whether you have a dog face or a cat face. " +
			"It plays a short staged analysis while the model works, then reveals the verdict with a confidence meter. " +
			"Without an image it opens an interactive prompt.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.String("backend", string(model.BackendHosted), "Classifier backend: hosted, onnx")
	pf.String("model-url", model.DefaultModelURL, "Base URL of the hosted model")
	pf.String("metadata-url", "", "Override the hosted metadata.json URL")
	pf.String("predict-url", "", "Override the hosted prediction URL")
	pf.String("onnx-model", "", "Path to a local .onnx model (onnx backend)")
	pf.String("onnx-metadata", "", "Path to the ONNX metadata JSON (onnx backend)")
	pf.String("onnx-lib", "", "Path to the onnxruntime shared library")
	pf.Int("frame-rate", 60, "Animation frames per second")
	pf.Duration("predict-timeout", 0, "Give up on a prediction after this long (0 waits forever)")
	pf.Bool("no-ui", false, "Disable TUI; use plain textual output")
	pf.BoolP("verbose", "v", false, "Debug logging and subprocess output")
	pf.String("log-format", "text", "Log format: text, json")

	// `facequiz <image>` analyzes without naming the subcommand.
	bindAnalyzeFlags(root.Flags())

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newLiveCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newThemeCmd())
	root.AddCommand(newLottoCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

type ctxKey string

const optionsKey ctxKey = "options"

// preRun loads config and resolves the options every command runs with.
// Logging goes to stderr until a TUI takes over the terminal.
func preRun(cmd *cobra.Command, _ []string) error {
	if err := config.Init(cmd.Root()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	config.InitLogger(os.Stderr, viper.GetString("log_format"), viper.GetBool("verbose"))

	opts, err := config.Resolve(viper.GetViper())
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	opts, err = cli.Normalize(opts)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cmd.SetContext(context.WithValue(cmd.Context(), optionsKey, opts))
	return nil
}

func optionsFrom(cmd *cobra.Command) model.Options {
	if v, ok := cmd.Context().Value(optionsKey).(model.Options); ok {
		return v
	}
	return model.Options{Backend: model.BackendHosted, ModelURL: model.DefaultModelURL, Stages: model.DefaultStages()}
}

// useTUI reports whether the interactive screen should run.
func useTUI(opts model.Options) bool {
	return !opts.NoUI && isTerminal()
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiLogging moves the logger to the log file for the lifetime of a TUI and
// returns a function restoring stderr logging.
func tuiLogging() func() {
	f, err := config.OpenLogFile()
	if err != nil {
		config.InitLogger(io.Discard, "text", false)
		return func() {}
	}
	config.InitLogger(f, viper.GetString("log_format"), viper.GetBool("verbose"))
	return func() {
		_ = f.Close()
		config.InitLogger(os.Stderr, viper.GetString("log_format"), viper.GetBool("verbose"))
	}
}

// exitFor maps a failure to its exit code and the message shown to the user.
func exitFor(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	code, msg := ExitCLIError, ""
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, classifier.ErrModelLoad):
		code, msg = ExitModelError, quiz.MsgModelLoadFailed
	case errors.Is(err, live.ErrWebcam):
		code, msg = ExitWebcamError, quiz.MsgWebcamFailed
	case errors.Is(err, classifier.ErrPredict):
		code, msg = ExitPredictError, quiz.MsgPredictFailed
	}
	slog.Error("command failed", "exit_code", code, "error", err)
	if msg != "" {
		err = fmt.Errorf("%s (%w)", msg, err)
	}
	return &ExitError{Code: code, Err: err}
}
