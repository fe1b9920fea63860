package swap

import "time"

// Clock is the time source expiry decisions are made against. Production
// code uses SystemClock; tests drive a manual clock so timelock behavior is
// deterministic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }
