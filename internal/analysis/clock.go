package analysis

import (
	"context"
	"time"
)

// DefaultFrameRate approximates a display refresh.
const DefaultFrameRate = 60

// Clock paces the animation. Frame blocks until the next redraw opportunity
// or until ctx is done.
type Clock interface {
	Now() time.Time
	Frame(ctx context.Context) error
}

// RealClock samples wall-clock time once per frame interval.
type RealClock struct {
	Interval time.Duration
}

// NewRealClock returns a clock ticking fps times per second.
func NewRealClock(fps int) RealClock {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return RealClock{Interval: time.Second / time.Duration(fps)}
}

func (c RealClock) Now() time.Time {
	return time.Now()
}

func (c RealClock) Frame(ctx context.Context) error {
	d := c.Interval
	if d <= 0 {
		d = time.Second / DefaultFrameRate
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
