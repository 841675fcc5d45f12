package ports

import "time"

// Timer is a pending callback that can be canceled.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was stopped before.
	Stop() bool
}

// Clock schedules callbacks. Production code uses the wall clock; tests drive
// a manual clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock implements Clock with the time package.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc runs f on its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
