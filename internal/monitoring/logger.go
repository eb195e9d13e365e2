package monitoring

import (
	"log"

	"golang.org/x/time/rate"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Throttled returns a Logf-shaped function that forwards to the current
// package logger at most limit times per second (with the given burst) and
// drops the rest. The package logger is resolved on every call so SetLogger
// still applies.
func Throttled(limit rate.Limit, burst int) func(format string, v ...interface{}) {
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(limit, burst)
	return func(format string, v ...interface{}) {
		if !lim.Allow() {
			return
		}
		Logf(format, v...)
	}
}
