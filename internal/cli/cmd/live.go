package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/live"
	"facequiz/internal/theme"
	"facequiz/internal/ui"
)

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "live",
		Short:         "Classify webcam frames continuously",
		Long:          "live predicts on every captured frame until stopped. Frames come from a camera through ffmpeg (the default), a directory of images, or an HTTP snapshot URL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runLive,
	}
	f := cmd.Flags()
	f.String("device", "", "Camera device (default per OS, e.g. /dev/video0)")
	f.String("format", "", "ffmpeg input format (default per OS: v4l2, avfoundation, dshow)")
	f.String("ffmpeg", "", "Path to ffmpeg")
	f.Bool("mirror", true, "Flip camera frames horizontally")
	f.String("dir", "", "Cycle through the images in a directory instead of a camera")
	f.String("snapshot-url", "", "Fetch frames from an HTTP snapshot endpoint instead of a camera")
	cmd.MarkFlagsMutuallyExclusive("dir", "snapshot-url", "device")
	return cmd
}

// sourceFromFlags picks the frame source. A camera is the default.
func sourceFromFlags(cmd *cobra.Command, verbose bool) (live.Source, error) {
	dir, _ := cmd.Flags().GetString("dir")
	snap, _ := cmd.Flags().GetString("snapshot-url")
	switch {
	case dir != "":
		return &live.DirSource{Dir: dir}, nil
	case snap != "":
		return &live.SnapshotSource{URL: snap}, nil
	}
	device, _ := cmd.Flags().GetString("device")
	format, _ := cmd.Flags().GetString("format")
	ffmpeg, _ := cmd.Flags().GetString("ffmpeg")
	mirror, _ := cmd.Flags().GetBool("mirror")
	if format == "" && device != "" && live.DefaultDeviceFormat() == "dshow" {
		return nil, errors.New("--format is required with --device on this platform")
	}
	return &live.DeviceSource{
		FFmpegPath: ffmpeg,
		Device:     device,
		Format:     format,
		Mirror:     mirror,
		Verbose:    verbose,
	}, nil
}

func runLive(cmd *cobra.Command, _ []string) error {
	opts := optionsFrom(cmd)
	src, err := sourceFromFlags(cmd, opts.Verbose)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	tui := useTUI(opts)
	if tui {
		restore := tuiLogging()
		defer restore()
	}

	ctx := cmd.Context()
	m, err := classifier.Load(ctx, opts)
	if err != nil {
		return exitFor(err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			slog.Warn("close model", "error", cerr)
		}
	}()

	clock := analysis.NewRealClock(opts.FrameRate)
	if tui {
		th, err := preferenceStore().Load()
		if err != nil {
			th = theme.Dark
		}
		return exitFor(ui.RunLive(ctx, ui.LiveConfig{
			Source: src,
			Model:  m,
			Clock:  clock,
			Theme:  th,
		}))
	}

	loop := live.NewLoop(src, m,
		live.WithClock(clock),
		live.WithSink(ui.PlainFrames(cmd.OutOrStdout())),
	)
	return exitFor(loop.Run(ctx))
}
