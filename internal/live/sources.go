package live

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"runtime"

	"github.com/go-resty/resty/v2"

	"facequiz/internal/classifier"
	"facequiz/internal/util"
	"facequiz/internal/util/deps"
)

// DirSource replays the images in a directory, in name order, wrapping
// around at the end.
type DirSource struct {
	Dir string

	files []string
	next  int
}

func (s *DirSource) Setup(ctx context.Context) error {
	files, err := util.ListImages(s.Dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images in %s", s.Dir)
	}
	s.files = files
	return nil
}

func (s *DirSource) Play(ctx context.Context) error {
	s.next = 0
	return nil
}

func (s *DirSource) Update(ctx context.Context) (image.Image, error) {
	if len(s.files) == 0 {
		return nil, errors.New("source not set up")
	}
	p := s.files[s.next%len(s.files)]
	s.next++
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return classifier.Decode(data)
}

func (s *DirSource) Close() error {
	return nil
}

// SnapshotSource polls a camera's still-image URL, as exposed by most IP
// cameras and phone webcam apps.
type SnapshotSource struct {
	URL    string
	Client *resty.Client
}

func (s *SnapshotSource) Setup(ctx context.Context) error {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid snapshot URL %q", s.URL)
	}
	if s.Client == nil {
		s.Client = resty.New().SetHeader("User-Agent", "facequiz")
	}
	return nil
}

// Play fetches one frame to confirm the camera answers.
func (s *SnapshotSource) Play(ctx context.Context) error {
	_, err := s.Update(ctx)
	return err
}

func (s *SnapshotSource) Update(ctx context.Context) (image.Image, error) {
	res, err := s.Client.R().SetContext(ctx).Get(s.URL)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("snapshot %s returned %d", s.URL, res.StatusCode())
	}
	return classifier.Decode(res.Body())
}

func (s *SnapshotSource) Close() error {
	return nil
}

// maxFrameBytes bounds one captured PNG frame.
const maxFrameBytes = 64 << 20

// DeviceSource captures single frames from a local camera through ffmpeg.
type DeviceSource struct {
	FFmpegPath string
	Device     string // e.g. /dev/video0, "0" (avfoundation), "video=Integrated Camera" (dshow)
	Format     string // ffmpeg input format; defaults per OS
	Mirror     bool
	Verbose    bool
	Runner     util.CmdRunner

	ffmpeg string
}

// DefaultDeviceFormat is ffmpeg's camera input format for the current OS.
func DefaultDeviceFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "v4l2"
	}
}

// DefaultDevice is the first camera for format.
func DefaultDevice(format string) string {
	switch format {
	case "avfoundation":
		return "0"
	case "dshow":
		return ""
	default:
		return "/dev/video0"
	}
}

func (s *DeviceSource) Setup(ctx context.Context) error {
	p, err := deps.FindFFmpeg(s.FFmpegPath)
	if err != nil {
		return err
	}
	s.ffmpeg = p
	if s.Format == "" {
		s.Format = DefaultDeviceFormat()
	}
	if s.Device == "" {
		s.Device = DefaultDevice(s.Format)
	}
	if s.Device == "" {
		return fmt.Errorf("a --device is required for %s capture", s.Format)
	}
	if s.Runner == nil {
		s.Runner = util.NewDefaultRunner()
	}
	return nil
}

// Play grabs a first frame so a missing or busy camera fails up front.
func (s *DeviceSource) Play(ctx context.Context) error {
	_, err := s.Update(ctx)
	return err
}

// Args returns the ffmpeg arguments for a single PNG frame on stdout.
func (s *DeviceSource) Args() []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", s.Format, "-i", s.Device, "-frames:v", "1"}
	if s.Mirror {
		args = append(args, "-vf", "hflip")
	}
	return append(args, "-f", "image2pipe", "-vcodec", "png", "-")
}

func (s *DeviceSource) Update(ctx context.Context) (image.Image, error) {
	res, err := s.Runner.Run(ctx, util.CmdSpec{
		Path:      s.ffmpeg,
		Args:      s.Args(),
		Verbose:   s.Verbose,
		MaxStdout: maxFrameBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("ffmpeg capture: %w", err)
	}
	if len(res.Stdout) == 0 {
		return nil, errors.New("ffmpeg produced no frame")
	}
	return classifier.Decode(res.Stdout)
}

func (s *DeviceSource) Close() error {
	return nil
}
