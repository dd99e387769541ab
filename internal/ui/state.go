package ui

import (
	"facequiz/internal/classifier"
	"facequiz/internal/pipeline"
	"facequiz/internal/session"
	"facequiz/internal/theme"
)

type phase int

const (
	phaseLoading   phase = iota // model loading
	phaseUpload                 // waiting for an image path
	phaseAnalyzing              // overlay visible
	phaseResult                 // verdict shown
	phaseError                  // static failure message shown
)

// appState is everything the quiz screen shares across submissions.
type appState struct {
	sessions *session.Controller
	model    classifier.Model
	svc      *pipeline.Service
	store    theme.Store
	theme    theme.Theme
}
