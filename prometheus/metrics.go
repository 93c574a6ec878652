package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loyalty-platform/pkg/config"
)

var (
	// Order metrics
	OrdersCreatedCounter     *prometheus.CounterVec
	OrderTransitionCounter   *prometheus.CounterVec
	OrderAnomalyCounter      prometheus.Counter
	OrderValidationCounter   *prometheus.CounterVec

	// Loyalty metrics
	PointsIssuedCounter   prometheus.Counter
	PointsRedeemedCounter prometheus.Counter
	PointsRefundedCounter prometheus.Counter

	// Catalog metrics
	StockDecrementCounter       *prometheus.CounterVec
	CollectionsCompletedCounter prometheus.Counter

	// Session metrics
	KioskSessionsCounter prometheus.Counter

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	// Order metrics
	OrdersCreatedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created",
		},
		[]string{"kind", "source"},
	)

	OrderTransitionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Total number of order status transitions",
		},
		[]string{"kind", "to_status"},
	)

	OrderAnomalyCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_anomalies_total",
		Help:      "Total number of skipped compensating deductions",
	})

	OrderValidationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_validation_failures_total",
			Help:      "Total number of rejected order requests",
		},
		[]string{"reason"},
	)

	// Loyalty metrics
	PointsIssuedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_issued_total",
		Help:      "Total loyalty points credited on completed currency orders",
	})

	PointsRedeemedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_redeemed_total",
		Help:      "Total loyalty points debited by point orders",
	})

	PointsRefundedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_refunded_total",
		Help:      "Total loyalty points refunded by cancelled point orders",
	})

	// Catalog metrics
	StockDecrementCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_decrements_total",
			Help:      "Total units of stock consumed by orders",
		},
		[]string{"product_kind"},
	)

	CollectionsCompletedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collections_completed_total",
		Help:      "Total number of customer collection completions",
	})

	// Session metrics
	KioskSessionsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kiosk_sessions_created_total",
		Help:      "Total number of kiosk pairing sessions created",
	})

	// Request metrics
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// RecordOrderCreated increments the orders created counter
func RecordOrderCreated(kind, source string) {
	OrdersCreatedCounter.With(prometheus.Labels{
		"kind":   kind,
		"source": source,
	}).Inc()
}

// RecordOrderTransition increments the transition counter
func RecordOrderTransition(kind, toStatus string) {
	OrderTransitionCounter.With(prometheus.Labels{
		"kind":      kind,
		"to_status": toStatus,
	}).Inc()
}

// RecordStockDecrement adds consumed units to the stock counter
func RecordStockDecrement(productKind string, units int) {
	StockDecrementCounter.With(prometheus.Labels{
		"product_kind": productKind,
	}).Add(float64(units))
}

// RecordValidationFailure increments the rejected-order counter
func RecordValidationFailure(reason string) {
	OrderValidationCounter.With(prometheus.Labels{
		"reason": reason,
	}).Inc()
}
