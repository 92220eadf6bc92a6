package clock

import "time"

// Clock is the single time authority for the contest engine. Request paths
// call Now exactly once and thread the value through every lifecycle and
// deadline decision, so admission and judging cannot disagree about whether
// a contest window was open.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall-clock Clock used in production.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time { return f.T }

func (f *Fixed) Set(t time.Time) { f.T = t }

func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
