// Package clock abstracts the two time operations the containers need
// (reading the current time and scheduling a callback) so expiry can be
// tested without sleeping.
package clock

import "time"

// Clock is implemented by Real for production and Fake for tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f in its own goroutine (real)
	// or synchronously inside Advance (fake).
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a scheduled callback returned by AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It returns false if the timer
// already fired or was stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
