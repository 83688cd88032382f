package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-ops-api/internal/service"
	"github.com/noah-isme/academy-ops-api/pkg/jobs"
	"github.com/noah-isme/academy-ops-api/pkg/response"
)

type queueStats interface {
	Stats() jobs.Stats
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	gateway queueStats
}

// NewMetricsHandler constructs a metrics handler. gateway may be nil.
func NewMetricsHandler(metrics *service.MetricsService, gateway queueStats) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, gateway: gateway}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Booking, workflow and cache counters
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ops/metrics [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	if h.metrics == nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	var meta map[string]interface{}
	if h.gateway != nil {
		meta = map[string]interface{}{"gateway": h.gateway.Stats()}
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil, meta)
}

// Health responds with a generic OK payload for readiness/liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
