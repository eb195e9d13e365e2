package rve

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anurag-upadhay/oofem/internal/monitoring"
)

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestLogObserver(t *testing.T) {
	t.Run("every acceptance", func(t *testing.T) {
		lines := captureLogs(t)
		o := NewLogObserver(0)
		o.Observe(Progress{Count: 3, Density: 0.125, Misses: 17})
		o.Observe(Progress{Count: 4, Density: 0.25, Misses: 2})

		require.Len(t, *lines, 2)
		assert.Equal(t, "Number of inclusions = 3 Density 0.125000 Misses = 17", (*lines)[0])
	})

	t.Run("throttled", func(t *testing.T) {
		lines := captureLogs(t)
		o := NewLogObserver(time.Hour)
		for i := 1; i <= 50; i++ {
			o.Observe(Progress{Count: i})
		}
		assert.Len(t, *lines, 1)
	})
}

func TestGenerate_LogsPlanAndProgress(t *testing.T) {
	lines := captureLogs(t)

	res := mustGenerate(t, scenarioParams(42), WithObserver(NewLogObserver(0)))

	require.Len(t, *lines, res.OriginalCount()+2, "plan line, one line per acceptance, summary line")
	assert.Contains(t, (*lines)[0], "expected number of spheres is 12")
	assert.Contains(t, (*lines)[1], "Number of inclusions = 1 ")
	assert.Contains(t, (*lines)[len(*lines)-1], res.RunID.String())
}

func TestMetricsObserver(t *testing.T) {
	quietLogs(t)

	reg := prometheus.NewRegistry()
	m, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	res := mustGenerate(t, scenarioParams(42), WithObserver(m))

	assert.Equal(t, float64(res.OriginalCount()), testutil.ToFloat64(m.inclusions))
	assert.Equal(t, float64(res.ImageCount()), testutil.ToFloat64(m.images))
	assert.Equal(t, float64(res.Attempts-res.OriginalCount()), testutil.ToFloat64(m.misses))
	assert.Equal(t, res.Density, testutil.ToFloat64(m.density))

	// A second run accumulates counters from zero images again.
	res2 := mustGenerate(t, scenarioParams(43), WithObserver(m))
	assert.Equal(t, float64(res.ImageCount()+res2.ImageCount()), testutil.ToFloat64(m.images))

	_, err = NewMetricsObserver(reg)
	assert.Error(t, err, "collectors are already registered")
}
