package rve

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports generator progress as prometheus metrics.
type MetricsObserver struct {
	inclusions prometheus.Counter
	images     prometheus.Counter
	misses     prometheus.Counter
	density    prometheus.Gauge

	lastRun    uuid.UUID
	lastImages int
}

// NewMetricsObserver creates the collectors and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	m := &MetricsObserver{
		inclusions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rvegen_inclusions_total",
			Help: "Original inclusions accepted.",
		}),
		images: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rvegen_images_total",
			Help: "Periodic images created.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rvegen_misses_total",
			Help: "Rejected candidates that preceded an acceptance.",
		}),
		density: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rvegen_density",
			Help: "Volume fraction of the run in progress.",
		}),
	}
	for _, c := range []prometheus.Collector{m.inclusions, m.images, m.misses, m.density} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements Observer. Counters accumulate across runs; the density
// gauge tracks the latest event.
func (m *MetricsObserver) Observe(p Progress) {
	m.inclusions.Inc()
	if p.RunID != m.lastRun {
		m.lastRun, m.lastImages = p.RunID, 0
	}
	m.images.Add(float64(p.Images - m.lastImages))
	m.lastImages = p.Images
	m.misses.Add(float64(p.Misses))
	m.density.Set(p.Density)
}
