package rve

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/anurag-upadhay/oofem/internal/monitoring"
)

// Progress is emitted after every accepted inclusion. It is diagnostic only.
type Progress struct {
	RunID   uuid.UUID
	Count   int     // originals accepted so far
	Images  int     // periodic images created so far
	Density float64 // achieved volume fraction
	Misses  int     // consecutive rejections before this acceptance
}

// Observer receives progress events from a generator run.
type Observer interface {
	Observe(p Progress)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(p Progress)

// Observe implements Observer.
func (f ObserverFunc) Observe(p Progress) { f(p) }

// LogObserver writes one progress line per acceptance through
// monitoring.Logf, optionally throttled.
type LogObserver struct {
	logf func(format string, v ...interface{})
}

// NewLogObserver returns a LogObserver. With every > 0 at most one line is
// written per interval; otherwise every acceptance is logged.
func NewLogObserver(every time.Duration) *LogObserver {
	if every <= 0 {
		return &LogObserver{logf: func(format string, v ...interface{}) {
			monitoring.Logf(format, v...)
		}}
	}
	return &LogObserver{logf: monitoring.Throttled(rate.Every(every), 1)}
}

// Observe implements Observer.
func (o *LogObserver) Observe(p Progress) {
	o.logf("Number of inclusions = %d Density %.6f Misses = %d", p.Count, p.Density, p.Misses)
}
