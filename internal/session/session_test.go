package session

import (
	"context"
	"errors"
	"testing"
)

func TestBegin_SupersedesPrevious(t *testing.T) {
	c := NewController()
	first := c.Begin(context.Background())
	second := c.Begin(context.Background())

	if second.ID <= first.ID {
		t.Fatalf("ids not increasing: %d then %d", first.ID, second.ID)
	}
	if first.Current() {
		t.Errorf("first session still current")
	}
	if !second.Current() {
		t.Errorf("second session not current")
	}

	select {
	case <-first.Context().Done():
	default:
		t.Fatalf("first session context not cancelled")
	}
	if got := Cause(first, first.Context().Err()); !errors.Is(got, ErrSuperseded) {
		t.Errorf("Cause = %v, want ErrSuperseded", got)
	}
	if err := second.Context().Err(); err != nil {
		t.Errorf("second session context err = %v", err)
	}
	if first.Trace == second.Trace {
		t.Errorf("trace ids should differ")
	}
}

func TestReset_InvalidatesActive(t *testing.T) {
	c := NewController()
	s := c.Begin(context.Background())
	c.Reset()

	if c.IsCurrent(s.ID) {
		t.Errorf("session %d still current after reset", s.ID)
	}
	if s.Context().Err() == nil {
		t.Errorf("session context not cancelled by reset")
	}

	next := c.Begin(context.Background())
	if !next.Current() {
		t.Errorf("session begun after reset is not current")
	}
}

func TestEnd_DoesNotReportSuperseded(t *testing.T) {
	c := NewController()
	s := c.Begin(context.Background())
	s.End()

	if !s.Current() {
		t.Errorf("ending a session should not change the generation")
	}
	if got := Cause(s, s.Context().Err()); !errors.Is(got, context.Canceled) {
		t.Errorf("Cause = %v, want context.Canceled", got)
	}
}

func TestCause_Nil(t *testing.T) {
	s := NewController().Begin(context.Background())
	if err := Cause(s, nil); err != nil {
		t.Errorf("Cause(nil) = %v", err)
	}
}
