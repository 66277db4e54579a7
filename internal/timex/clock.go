package timex

import "time"

// Clock returns the current wall-clock time. Production code passes
// time.Now; tests pass a fixed or steppable function.
type Clock func() time.Time

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
