package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"facequiz/internal/analysis"
	"facequiz/internal/classifier"
	"facequiz/internal/live"
	"facequiz/internal/model"
	"facequiz/internal/pipeline"
	"facequiz/internal/progress"
	"facequiz/internal/quiz"
	"facequiz/internal/session"
	"facequiz/internal/theme"
)

// revealDelay is the pause before the confidence bar fills.
const revealDelay = 500 * time.Millisecond

// Config wires the quiz screen to its collaborators.
type Config struct {
	Options model.Options
	// Load opens the classifier; it runs once, in the background, at start-up.
	Load  func(ctx context.Context) (classifier.Model, error)
	Store theme.Store
	// Clock paces the analysis animation. Nil uses Options.FrameRate.
	Clock analysis.Clock
	// Path, when set, is submitted as soon as the model is ready.
	Path string
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    Config

	state appState
	phase phase

	input   textinput.Model
	spinner spinner.Model
	overlay progress.Update
	bar     bubblesprogress.Model // analysis overlay
	conf    bubblesprogress.Model // result confidence
	verdict quiz.Verdict
	errMsg  string
	failure error // last error shown, returned by Run

	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, cfg Config) Model {
	c, cancel := context.WithCancel(ctx)

	th := theme.Dark
	if cfg.Store != nil {
		if t, err := cfg.Store.Load(); err != nil {
			slog.Warn("load theme preference", "error", err)
		} else {
			th = t
		}
	}
	if cfg.Clock == nil {
		cfg.Clock = analysis.NewRealClock(cfg.Options.FrameRate)
	}
	sty := stylesFor(th)

	in := textinput.New()
	in.Placeholder = "사진 파일 경로 (예: ~/Pictures/me.jpg)"
	in.Prompt = "📷 "
	in.Width = 48
	in.Focus()

	sp := spinner.New()
	sp.Style = sty.Spinner

	return Model{
		ctx:    c,
		cancel: cancel,
		cfg:    cfg,
		state: appState{
			sessions: session.NewController(),
			store:    cfg.Store,
			theme:    th,
		},
		phase:   phaseLoading,
		input:   in,
		spinner: sp,
		bar:     newBar(sty),
		conf:    newBar(sty),
		styles:  sty,
		eventCh: make(chan tea.Msg, 256),
	}
}

func newBar(sty Styles) bubblesprogress.Model {
	bar := bubblesprogress.New(
		bubblesprogress.WithSolidFill(sty.BarFull),
		bubblesprogress.WithWidth(40),
		bubblesprogress.WithoutPercentage(),
	)
	bar.EmptyColor = sty.BarEmpty
	return bar
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.listenEventsCmd(),
		m.loadModelCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case modelLoadedMsg:
		if msg.Err != nil {
			slog.Error("model load failed", "error", msg.Err)
			m.fail(msg.Err, quiz.MsgModelLoadFailed)
			return m, nil
		}
		svc, err := pipeline.NewService(
			pipeline.WithModel(msg.Model),
			pipeline.WithStages(m.cfg.Options.Stages),
			pipeline.WithClock(m.cfg.Clock),
			pipeline.WithReporter(teaReporter{ctx: m.ctx, ch: m.eventCh}),
			pipeline.WithSessions(m.state.sessions),
			pipeline.WithTimeout(m.cfg.Options.PredictTimeout),
		)
		if err != nil {
			m.fail(errors.Join(classifier.ErrModelLoad, err), quiz.MsgModelLoadFailed)
			return m, nil
		}
		m.state.model = msg.Model
		m.state.svc = svc
		m.phase = phaseUpload
		if m.cfg.Path != "" {
			return m.submit(m.cfg.Path)
		}
		return m, nil

	case analysisUpdateMsg:
		if m.stale(msg.U.SessionID) {
			return m, m.listenEventsCmd()
		}
		m.overlay = msg.U
		return m, m.listenEventsCmd()

	case analysisResultMsg:
		if m.stale(msg.R.SessionID) {
			return m, m.listenEventsCmd()
		}
		m.overlay = progress.Update{}
		if msg.R.Err != nil {
			m.fail(msg.R.Err, quiz.MsgPredictFailed)
			return m, m.listenEventsCmd()
		}
		v, err := quiz.Judge(msg.R.Prediction)
		if err != nil {
			m.fail(errors.Join(classifier.ErrPredict, err), quiz.MsgPredictFailed)
			return m, m.listenEventsCmd()
		}
		m.verdict = v
		m.phase = phaseResult
		m.failure = nil
		m.conf = newBar(m.styles)
		id := msg.R.SessionID
		return m, tea.Batch(m.listenEventsCmd(), tea.Tick(revealDelay, func(time.Time) tea.Msg {
			return revealMsg{SessionID: id}
		}))

	case submitDoneMsg:
		// Errors raised before the animation started never reach the reporter.
		if msg.Err != nil && !errors.Is(msg.Err, session.ErrSuperseded) &&
			!m.stale(msg.Outcome.SessionID) && m.phase == phaseAnalyzing {
			m.overlay = progress.Update{}
			m.fail(msg.Err, quiz.MsgPredictFailed)
		}
		return m, nil

	case revealMsg:
		if m.stale(msg.SessionID) || m.phase != phaseResult {
			return m, nil
		}
		return m, m.conf.SetPercent(float64(m.verdict.Confidence) / 100)

	case bubblesprogress.FrameMsg:
		pm, cmd := m.conf.Update(msg)
		if p, ok := pm.(bubblesprogress.Model); ok {
			m.conf = p
		}
		return m, cmd

	case themeSavedMsg:
		if msg.Err != nil {
			slog.Warn("save theme preference", "error", msg.Err)
		}
		m.applyTheme(msg.Theme)
		return m, nil

	case allDoneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.spinner, c = m.spinner.Update(msg)
	cmds = append(cmds, c)
	if m.phase == phaseUpload {
		m.input, c = m.input.Update(msg)
		cmds = append(cmds, c)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "ctrl+t":
		return m, m.toggleThemeCmd()
	}

	// The path prompt owns plain letters while it has focus.
	if m.phase == phaseUpload {
		switch key {
		case "esc":
			m.cancel()
			return m, tea.Quit
		case "enter":
			return m.submit(m.input.Value())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		m.cancel()
		return m, tea.Quit
	case "t":
		return m, m.toggleThemeCmd()
	case "r", "enter":
		if m.phase == phaseLoading || m.state.svc == nil {
			return m, nil
		}
		return m.reset(), textinput.Blink
	}
	return m, nil
}

// submit starts a new session for path. An empty path does nothing.
func (m Model) submit(path string) (tea.Model, tea.Cmd) {
	if path == "" || m.state.svc == nil {
		return m, nil
	}
	m.phase = phaseAnalyzing
	m.verdict = quiz.Verdict{}
	m.errMsg = ""
	stages := m.state.svc.Stages()
	m.overlay = progress.Update{
		Phase: progress.PhaseAnalyzing,
		Icon:  stages[0].Icon,
		Label: stages[0].Label,
	}
	m.input.Blur()

	svc, ctx := m.state.svc, m.ctx
	return m, func() tea.Msg {
		out, err := svc.Submit(ctx, path)
		return submitDoneMsg{Outcome: out, Err: err}
	}
}

// reset returns to an empty upload prompt and invalidates any running
// session.
func (m Model) reset() Model {
	m.state.svc.Reset()
	m.phase = phaseUpload
	m.overlay = progress.Update{}
	m.verdict = quiz.Verdict{}
	m.errMsg = ""
	m.failure = nil
	m.conf = newBar(m.styles)
	m.input.Reset()
	m.input.Focus()
	return m
}

func (m *Model) fail(err error, userMsg string) {
	m.phase = phaseError
	m.errMsg = userMsg
	m.failure = err
}

func (m *Model) applyTheme(t theme.Theme) {
	m.state.theme = t
	m.styles = stylesFor(t)
	m.spinner.Style = m.styles.Spinner
	for _, bar := range []*bubblesprogress.Model{&m.bar, &m.conf} {
		bar.FullColor = m.styles.BarFull
		bar.EmptyColor = m.styles.BarEmpty
	}
}

// stale reports whether id belongs to a superseded session.
func (m Model) stale(id uint64) bool {
	return !m.state.sessions.IsCurrent(id)
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) loadModelCmd() tea.Cmd {
	return func() tea.Msg {
		if m.cfg.Load == nil {
			return modelLoadedMsg{Err: classifier.ErrModelLoad}
		}
		cm, err := m.cfg.Load(m.ctx)
		return modelLoadedMsg{Model: cm, Err: err}
	}
}

func (m Model) toggleThemeCmd() tea.Cmd {
	store := m.state.store
	cur := m.state.theme
	return func() tea.Msg {
		if store == nil {
			return themeSavedMsg{Theme: cur.Toggle()}
		}
		t, err := theme.Toggle(store)
		if err != nil {
			return themeSavedMsg{Theme: cur.Toggle(), Err: err}
		}
		return themeSavedMsg{Theme: t}
	}
}

type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Overlay-hiding updates must not be dropped.
	if !u.Visible() {
		r.send(analysisUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- analysisUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	// Always block on Result messages - they're critical
	r.send(analysisResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}

// liveSink forwards loop frames to the TUI, dropping frames while the
// screen is behind.
func liveSink(ch chan tea.Msg) func(live.Frame) {
	return func(f live.Frame) {
		select {
		case ch <- liveFrameMsg{F: f}:
		default:
		}
	}
}
