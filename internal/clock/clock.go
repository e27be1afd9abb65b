package clock

import "time"

// Clock abstracts wall-clock access so report math can take an explicit
// as-of time instead of reading time.Now deep inside the engine.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
