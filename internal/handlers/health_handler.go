package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/newscap/internal/domains/toolcatalog"
)

// CatalogProbe is the slice of the tool server client the readiness
// check looks at.
type CatalogProbe interface {
	IsConnected() bool
	ServerName() string
}

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	registrar toolcatalog.RegistrarService
	probe     CatalogProbe
	started   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registrar toolcatalog.RegistrarService, probe CatalogProbe) *HealthHandler {
	return &HealthHandler{
		registrar: registrar,
		probe:     probe,
		started:   time.Now(),
	}
}

// Healthz reports process liveness
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Process is up"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz reports whether the host can serve turns
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Agent registered and tool server reachable"
// @Failure 503 {object} map[string]string "Not ready"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.registrar.AgentID() == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "starting",
			"reason": "no registered agent",
		})
		return
	}

	if h.probe != nil && !h.probe.IsConnected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"reason": "tool server disconnected",
		})
		return
	}

	resp := gin.H{
		"status":      "ready",
		"agentId":     h.registrar.AgentID(),
		"lastRefresh": h.registrar.LastRefresh().Format(time.RFC3339),
	}
	if h.probe != nil {
		resp["toolServer"] = h.probe.ServerName()
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterHealthRoutes mounts the probes on the engine root.
func (h *HealthHandler) RegisterHealthRoutes(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}
