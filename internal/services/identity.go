package services

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injectable so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by the wall clock, in UTC.
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// IDGenerator mints opaque unique card ids.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to the IDGenerator interface.
type IDGeneratorFunc func() string

// NewID calls f.
func (f IDGeneratorFunc) NewID() string { return f() }

// RandomIDGenerator combines a random UUID with a base-36 nanosecond
// timestamp, so ids stay unique even if the random source ever repeated.
func RandomIDGenerator() IDGenerator {
	return IDGeneratorFunc(func() string {
		return uuid.New().String() + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	})
}
