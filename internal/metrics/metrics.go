package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erp_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	RequestsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_material_requests_reviewed_total",
		Help: "Material requests moved out of PENDING, by outcome.",
	}, []string{"outcome"})

	UsageLogs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_usage_logs_total",
		Help: "Usage log writes by result (created, updated, deleted, over_allocated).",
	}, []string{"result"})

	BillsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_bills_saved_total",
		Help: "Bills created or updated, by bill type.",
	}, []string{"bill_type"})
)

// Middleware records request count and latency. The matched route pattern
// is used as the label so ids do not blow up cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
