// Package session issues generation-numbered analysis sessions. Beginning a
// session cancels the one before it, so at most one session is live.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is returned by work running under a session that a newer
// submission (or a reset) replaced.
var ErrSuperseded = errors.New("session superseded")

// Session is one run from image submission to result reveal.
type Session struct {
	ID    uint64
	Trace uuid.UUID

	ctx    context.Context
	cancel context.CancelCauseFunc
	ctrl   *Controller
}

// Context is cancelled when the session is superseded or ended.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Current reports whether no newer session has begun.
func (s *Session) Current() bool {
	return s.ctrl.IsCurrent(s.ID)
}

// End releases the session's context. It does not affect newer sessions.
func (s *Session) End() {
	s.cancel(context.Canceled)
}

// Controller hands out sessions with monotonically increasing IDs.
type Controller struct {
	mu     sync.Mutex
	gen    uint64
	active *Session
}

func NewController() *Controller {
	return &Controller{}
}

// Begin starts a new session derived from parent and supersedes the
// previous one.
func (c *Controller) Begin(parent context.Context) *Session {
	ctx, cancel := context.WithCancelCause(parent)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.cancel(ErrSuperseded)
	}
	c.gen++
	s := &Session{
		ID:     c.gen,
		Trace:  uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		ctrl:   c,
	}
	c.active = s
	return s
}

// Reset supersedes the active session without starting a new one.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.cancel(ErrSuperseded)
		c.active = nil
	}
	c.gen++
}

// Current returns the newest generation handed out.
func (c *Controller) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// IsCurrent reports whether id belongs to the newest generation.
func (c *Controller) IsCurrent(id uint64) bool {
	return c.Current() == id
}

// Cause maps a session context error to ErrSuperseded when the session was
// replaced, and returns err unchanged otherwise.
func Cause(s *Session, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(context.Cause(s.ctx), ErrSuperseded) {
		return ErrSuperseded
	}
	return err
}
