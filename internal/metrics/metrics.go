package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shalev396/Call-Filter/internal/domain"
)

var (
	once sync.Once

	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callfilter",
			Name:      "decisions_total",
			Help:      "Count of call decisions by reason.",
		},
		[]string{"reason", "allow"},
	)

	configLoadErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "callfilter",
			Name:      "config_load_errors_total",
			Help:      "Count of failed account config loads during screening.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callfilter",
			Name:      "config_cache_lookups_total",
			Help:      "Count of config cache lookups by result.",
		},
		[]string{"result"},
	)

	screenDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "callfilter",
			Name:      "screen_duration_seconds",
			Help:      "Time spent screening one call, including config load.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(decisions, configLoadErrors, cacheLookups, screenDuration)
		// Export zero-valued series for every reason from the start.
		for _, r := range domain.Reasons {
			decisions.WithLabelValues(string(r), allowLabel(r.Allows()))
		}
	})
}

func allowLabel(allow bool) string {
	if allow {
		return "true"
	}
	return "false"
}

func IncDecision(reason string, allow bool) {
	decisions.WithLabelValues(reason, allowLabel(allow)).Inc()
}

func IncConfigLoadError() {
	configLoadErrors.Inc()
}

func IncCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveScreen records the duration since start.
func ObserveScreen(start time.Time) {
	screenDuration.Observe(time.Since(start).Seconds())
}
