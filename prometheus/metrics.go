package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lamb-Project/lamb-sub000/pkg/config"
)

var (
	// Migration metrics
	ValidationCounter        *prometheus.CounterVec
	MigrationCounter         *prometheus.CounterVec
	ResourcesMigratedCounter *prometheus.CounterVec
	ConflictsResolvedCounter *prometheus.CounterVec
	MigrationDuration        prometheus.Histogram

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics.
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	ValidationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_validations_total",
			Help:      "Total number of migration validation passes",
		},
		[]string{"outcome"}, // "ok", "blocked", "error"
	)

	MigrationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Total number of migration runs",
		},
		[]string{"outcome", "strategy"}, // outcome: "committed", "rolled_back"
	)

	ResourcesMigratedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_migrated_total",
			Help:      "Total number of resources moved between organizations",
		},
		[]string{"category"},
	)

	ConflictsResolvedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_resolved_total",
			Help:      "Total number of naming conflicts resolved during migrations",
		},
		[]string{"category", "strategy"},
	)

	MigrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "migration_duration_seconds",
			Help:      "Duration of migration runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics.
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordValidation records one validation pass by outcome.
func RecordValidation(outcome string) {
	ValidationCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordMigration records one migration run by outcome and strategy.
func RecordMigration(outcome, strategy string) {
	MigrationCounter.With(prometheus.Labels{"outcome": outcome, "strategy": strategy}).Inc()
}

// RecordResourcesMigrated adds to the per-category moved-resource counter.
func RecordResourcesMigrated(category string, n int64) {
	ResourcesMigratedCounter.With(prometheus.Labels{"category": category}).Add(float64(n))
}

// RecordConflictsResolved adds to the per-category conflict counter.
func RecordConflictsResolved(category, strategy string, n int) {
	ConflictsResolvedCounter.With(prometheus.Labels{"category": category, "strategy": strategy}).Add(float64(n))
}

// TrackDBOperation measures a database operation duration. Use as
// defer TrackDBOperation("query")(time.Now()).
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware captures request duration and count for each request.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDurationHistogram.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			APIRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
