// Package observability provides the Prometheus metrics for the vending
// backend.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global collector instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// Turn metrics
	TurnsHandled *prometheus.CounterVec
	TurnDuration *prometheus.HistogramVec

	// Business metrics
	OrdersRecorded         prometheus.Counter
	RecommendationsServed  prometheus.Counter
	RecommendationsSkipped prometheus.Counter

	// Gateway metrics
	DBOperations     *prometheus.CounterVec
	DBDuration       *prometheus.HistogramVec
	DetectorRequests *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Singleton avoids duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	turnsHandled := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_handled_total",
			Help:      "Total number of voice turns handled",
		},
		[]string{"intent", "outcome"},
	)

	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Voice turn handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	ordersRecorded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_recorded_total",
			Help:      "Total number of purchases persisted",
		},
	)

	recommendationsServed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_served_total",
			Help:      "Total number of personalized offers made",
		},
	)

	recommendationsSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_skipped_total",
			Help:      "Total number of turns without a usable recommendation",
		},
	)

	dbOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	dbDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	detectorRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detector_requests_total",
			Help:      "Total number of face server requests",
		},
		[]string{"operation", "status"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of product cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of product cache misses",
		},
	)

	registry.MustRegister(
		turnsHandled, turnDuration,
		ordersRecorded, recommendationsServed, recommendationsSkipped,
		dbOperations, dbDuration, detectorRequests,
		cacheHits, cacheMisses,
	)

	globalCollector = &Collector{
		registry:               registry,
		TurnsHandled:           turnsHandled,
		TurnDuration:           turnDuration,
		OrdersRecorded:         ordersRecorded,
		RecommendationsServed:  recommendationsServed,
		RecommendationsSkipped: recommendationsSkipped,
		DBOperations:           dbOperations,
		DBDuration:             dbDuration,
		DetectorRequests:       detectorRequests,
		CacheHits:              cacheHits,
		CacheMisses:            cacheMisses,
	}
	return globalCollector
}

// Registry exposes the collector's registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTurn records one handled voice turn.
func (c *Collector) ObserveTurn(intent, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.TurnsHandled.WithLabelValues(intent, outcome).Inc()
	c.TurnDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// ObserveDBOperation records one store call.
func (c *Collector) ObserveDBOperation(operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.DBOperations.WithLabelValues(operation, status).Inc()
	c.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveDetectorRequest records one face server call.
func (c *Collector) ObserveDetectorRequest(operation string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.DetectorRequests.WithLabelValues(operation, status).Inc()
}
