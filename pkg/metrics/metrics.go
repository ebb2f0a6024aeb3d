// Package metrics exposes marketplace counters to prometheus.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	marketNamespace = "market"
	apiSubsystem    = "http_api"
)

const (
	ResultOK     = "ok"
	ResultDenied = "denied"
	ResultFailed = "failed"
)

var (
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Name:      "operations_total",
			Help:      "Marketplace ledger operations by kind and result",
		},
		[]string{"operation", "result"},
	)
	tradedVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Name:      "traded_volume_units_total",
			Help:      "Sum of payments credited to sellers",
		},
	)
	withdrawnVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Name:      "withdrawn_units_total",
			Help:      "Sum of proceeds paid out to sellers",
		},
	)
	activeListings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: marketNamespace,
			Name:      "active_listings",
			Help:      "Number of active listings",
		},
	)
	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Name:      "events_total",
			Help:      "Ledger events by type and delivery outcome",
		},
		[]string{"type", "outcome"},
	)
	compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Name:      "compensations_total",
			Help:      "Compensating treasury calls made after failed settlements",
		},
		[]string{"operation", "result"},
	)
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marketNamespace,
			Subsystem: apiSubsystem,
			Name:      "requests_total",
			Help:      "Marketplace HTTP API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: marketNamespace,
			Subsystem: apiSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Marketplace HTTP API request duration",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "route"},
	)

	registerOnce sync.Once
)

// Register adds marketplace collectors to the registerer, the default one if nil.
// Only the first call has effect.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(operations, tradedVolume, withdrawnVolume, activeListings, events, compensations,
			apiRequests, apiLatency)
	})
}

func Operation(op, result string) {
	operations.WithLabelValues(op, result).Inc()
}

func Traded(amount uint64) {
	tradedVolume.Add(float64(amount))
}

func Withdrawn(amount uint64) {
	withdrawnVolume.Add(float64(amount))
}

func ListingAdded() {
	activeListings.Inc()
}

func ListingRemoved() {
	activeListings.Dec()
}

func SetActiveListings(n int) {
	activeListings.Set(float64(n))
}

func Event(eventType, outcome string) {
	events.WithLabelValues(eventType, outcome).Inc()
}

func Compensation(op, result string) {
	compensations.WithLabelValues(op, result).Inc()
}

// APIRequest records a served request, route is the matched route pattern.
func APIRequest(method, route string, status int, took time.Duration) {
	apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	apiLatency.WithLabelValues(method, route).Observe(took.Seconds())
}
