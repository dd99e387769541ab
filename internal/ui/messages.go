package ui

import (
	"facequiz/internal/classifier"
	"facequiz/internal/live"
	"facequiz/internal/pipeline"
	"facequiz/internal/progress"
	"facequiz/internal/theme"
)

type modelLoadedMsg struct {
	Model classifier.Model
	Err   error
}

type analysisUpdateMsg struct {
	U progress.Update
}

type analysisResultMsg struct {
	R progress.Result
}

// submitDoneMsg is sent when Submit returns, after the reporter's Result.
type submitDoneMsg struct {
	Outcome pipeline.Outcome
	Err     error
}

// revealMsg starts the confidence bar animation of a session's result.
type revealMsg struct {
	SessionID uint64
}

type themeSavedMsg struct {
	Theme theme.Theme
	Err   error
}

type liveFrameMsg struct {
	F live.Frame
}

type liveDoneMsg struct {
	Err error
}

type allDoneMsg struct{}
