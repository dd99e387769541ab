package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"facequiz/internal/util/format"
)

// stderrTail bounds how much diagnostic output is kept from a subprocess.
const stderrTail = 4 << 10

// CmdSpec describes a one-shot subprocess whose stdout is the payload, such
// as ffmpeg writing a single frame to a pipe.
type CmdSpec struct {
	Path      string
	Args      []string
	Verbose   bool  // log the command line and its stderr at debug level
	MaxStdout int64 // 0 means unlimited
}

// CmdResult holds the captured output. Stdout is kept byte for byte.
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int
}

// CmdRunner runs subprocesses. Tests substitute fakes.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

// DefaultRunner runs real processes via os/exec.
type DefaultRunner struct{}

func NewDefaultRunner() CmdRunner {
	return DefaultRunner{}
}

func (DefaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// Run executes spec and waits for it. A non-zero exit is an error carrying
// the last stderr line.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	stdout := &cappedBuffer{max: spec.MaxStdout}
	stderr := &tailBuffer{max: stderrTail}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if spec.Verbose {
		slog.Debug("exec", "cmd", shellQuote(spec.Path, spec.Args))
	}
	err := cmd.Run()

	res := CmdResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if spec.Verbose && len(res.Stderr) > 0 {
		slog.Debug("exec stderr", "output", string(res.Stderr))
	}
	if stdout.overflow {
		return res, fmt.Errorf("%s wrote more than %s", spec.Path, format.HumanizeBytes(spec.MaxStdout))
	}
	if err == nil {
		return res, nil
	}

	res.Code = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Code = exitErr.ExitCode()
	}
	if line := lastLine(res.Stderr); line != "" {
		return res, fmt.Errorf("exit %d: %s: %w", res.Code, line, err)
	}
	return res, fmt.Errorf("exit %d: %w", res.Code, err)
}

// cappedBuffer keeps at most max bytes and drains the rest so the child
// never blocks on a full pipe.
type cappedBuffer struct {
	bytes.Buffer
	max      int64
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.overflow || (b.max > 0 && int64(b.Len()+len(p)) > b.max) {
		b.overflow = true
		return len(p), nil
	}
	return b.Buffer.Write(p)
}

// tailBuffer keeps only the last max bytes written.
type tailBuffer struct {
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte {
	return b.buf
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// shellQuote returns a printable shell-like command string for logging.
func shellQuote(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, s := range append([]string{path}, args...) {
		switch {
		case s == "":
			parts = append(parts, "''")
		case strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!"):
			parts = append(parts, "'"+strings.ReplaceAll(s, "'", `'\''`)+"'")
		default:
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
