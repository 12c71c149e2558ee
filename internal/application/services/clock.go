package services

import "time"

// SystemClock is the wall-clock implementation of ports.Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
