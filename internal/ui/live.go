package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/live"
	"facequiz/internal/quiz"
	"facequiz/internal/theme"
	"facequiz/internal/util/format"
)

// LiveConfig wires the live screen.
type LiveConfig struct {
	Source live.Source
	Model  classifier.Model
	Clock  analysis.Clock
	Theme  theme.Theme
}

// LiveModel shows per-class probabilities for the latest webcam frame.
type LiveModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	loop   *live.Loop
	labels []string
	frame  live.Frame
	err    error
	done   bool

	styles  Styles
	eventCh chan tea.Msg
}

func NewLiveModel(ctx context.Context, cfg LiveConfig) LiveModel {
	c, cancel := context.WithCancel(ctx)
	ch := make(chan tea.Msg, 16)
	opts := []live.Option{live.WithSink(liveSink(ch))}
	if cfg.Clock != nil {
		opts = append(opts, live.WithClock(cfg.Clock))
	}
	return LiveModel{
		ctx:     c,
		cancel:  cancel,
		loop:    live.NewLoop(cfg.Source, cfg.Model, opts...),
		labels:  cfg.Model.Labels(),
		styles:  stylesFor(cfg.Theme),
		eventCh: ch,
	}
}

func (m LiveModel) Init() tea.Cmd {
	loop, ctx := m.loop, m.ctx
	return tea.Batch(
		func() tea.Msg {
			return liveDoneMsg{Err: loop.Run(ctx)}
		},
		m.listenEventsCmd(),
	)
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s", "q", "esc", "ctrl+c":
			m.loop.Stop()
			return m, nil
		}
	case liveFrameMsg:
		m.frame = msg.F
		return m, m.listenEventsCmd()
	case liveDoneMsg:
		m.done = true
		m.err = msg.Err
		m.cancel()
		return m, tea.Quit
	case allDoneMsg:
		return m, nil
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("facequiz live · 웹캠 분석"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil && errors.Is(m.err, live.ErrWebcam):
		b.WriteString(m.styles.Error.Render(quiz.MsgWebcamFailed))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render(quiz.MsgPredictFailed))
	case m.frame.Seq == 0:
		b.WriteString(m.styles.Faint.Render("웹캠을 준비하는 중..."))
	default:
		width := 0
		for _, c := range m.frame.Prediction {
			width = max(width, len([]rune(c.ClassName)))
		}
		for _, c := range m.frame.Prediction {
			pct := quiz.Percent(c.Probability)
			name := c.ClassName + strings.Repeat(" ", width-len([]rune(c.ClassName)))
			fmt.Fprintf(&b, "%s  %s %.2f\n", m.styles.Header.Render(name), format.Meter(pct, 30), c.Probability)
		}
		b.WriteString(m.styles.Faint.Render(fmt.Sprintf("frame %d", m.frame.Seq)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.Key.Render("s: 중지 • q: 종료"))
	return m.styles.Box.Render(b.String())
}

func (m LiveModel) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// RunLive runs the live screen until the loop ends and returns the loop's
// error.
func RunLive(ctx context.Context, cfg LiveConfig) error {
	prog := tea.NewProgram(NewLiveModel(ctx, cfg), tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if fm, ok := final.(LiveModel); ok {
		return fm.err
	}
	return nil
}
