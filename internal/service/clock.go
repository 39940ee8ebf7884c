package service

import "time"

// SystemClock is the production clock. Tests substitute a fixed one.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
