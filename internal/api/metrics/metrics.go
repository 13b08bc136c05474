// Package metrics defines all custom Prometheus metrics for the tracking
// service. It is the single source of truth for metric names, labels, and
// help strings; metrics register with the default registry at import time.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// SourcePollsTotal counts individual courier adapter calls.
// Labels:
//   - service: the courier adapter (e.g. "bluedart")
//   - outcome: "hit" when the adapter returned events, "miss" otherwise
var SourcePollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_polls_total",
		Help:      "Total number of courier source polls, by service and outcome.",
	},
	[]string{"service", "outcome"},
)

// SourcePollDuration measures how long one adapter call takes, including the
// slow browser-automation adapters.
var SourcePollDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_poll_duration_seconds",
		Help:      "Duration of individual courier source polls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"service"},
)

// RefreshCyclesTotal counts scheduled batch refresh invocations.
// Label:
//   - result: "completed" or "skipped" (previous cycle still running)
var RefreshCyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_cycles_total",
		Help:      "Total number of scheduled refresh cycles, by result.",
	},
	[]string{"result"},
)

// EventsPersistedTotal counts genuinely new tracking events written to the
// store after 4-tuple de-duplication.
var EventsPersistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_persisted_total",
		Help:      "Total number of new tracking events persisted.",
	},
)

// NotificationsTotal counts outbound channel notifications.
// Labels:
//   - kind: "updated" or "delivered"
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications submitted to the channel.",
	},
	[]string{"kind", "result"},
)

// PackagesCreatedTotal counts newly registered tracking numbers.
var PackagesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packages_created_total",
		Help:      "Total number of packages registered for tracking.",
	},
)

// ObservePoll records one adapter call in both poll metrics.
func ObservePoll(service string, found bool, elapsed time.Duration) {
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	SourcePollsTotal.WithLabelValues(service, outcome).Inc()
	SourcePollDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}
