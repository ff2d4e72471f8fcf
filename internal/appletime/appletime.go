// Package appletime converts between the backup's native timestamp
// encoding (an offset from 2001-01-01 00:00:00 UTC) and time.Time values.
//
// The messaging store records message dates in nanoseconds since that
// epoch, while attachment creation dates are whole seconds. Callers must
// use FromNanoseconds for the former and FromSeconds for the latter;
// mixing them up shifts times by nine orders of magnitude without erroring.
package appletime

import "time"

// Epoch is the reference point for Apple timestamps (2001-01-01 00:00:00 UTC)
var Epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// NanosPerSecond is the scale factor for message date columns.
const NanosPerSecond = 1_000_000_000

// FromSeconds converts whole seconds since the Apple epoch to a time.Time.
func FromSeconds(sec int64) time.Time {
	return Epoch.Add(time.Duration(sec) * time.Second)
}

// ToSeconds converts a time.Time to whole seconds since the Apple epoch.
// Exact inverse of FromSeconds for any whole-second offset.
func ToSeconds(t time.Time) int64 {
	return int64(t.Sub(Epoch) / time.Second)
}

// FromNanoseconds converts nanoseconds since the Apple epoch to a
// time.Time, truncated to whole seconds to match the second-granularity
// display format.
func FromNanoseconds(ns int64) time.Time {
	return FromSeconds(ns / NanosPerSecond)
}

// ToNanoseconds converts a time.Time to nanoseconds since the Apple epoch.
func ToNanoseconds(t time.Time) int64 {
	return ToSeconds(t) * NanosPerSecond
}
