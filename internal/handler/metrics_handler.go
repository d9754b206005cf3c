package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intelliplan-api/internal/service"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
	"github.com/noah-isme/intelliplan-api/pkg/response"
)

const pingTimeout = 2 * time.Second

type readinessChecker interface {
	Ready() bool
}

type pinger interface {
	Ping(ctx context.Context) error
}

// MetricsHandler exposes observability and health endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	catalog readinessChecker
	cache   pinger
}

// NewMetricsHandler constructs a metrics handler. cache may be nil when Redis is disabled.
func NewMetricsHandler(metrics *service.MetricsService, catalog readinessChecker, cache pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, catalog: catalog, cache: cache}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Process counters in JSON
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until a catalog has been loaded. An unreachable cache degrades
// the report but does not fail it.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.catalog == nil || !h.catalog.Ready() {
		response.Error(c, appErrors.Clone(appErrors.ErrCatalogUnavailable, "catalog not loaded"))
		return
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "unreachable"
		} else {
			cacheStatus = "ok"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "cache": cacheStatus})
}
