package handlers

import (
	"github.com/gin-gonic/gin"

	"SignBridge/pkg/middleware"
	"SignBridge/pkg/response"
)

func (h *Handlers) handleMaintenanceRun(c *gin.Context) {
	report := h.maintenance.Run(c.Request.Context())
	response.Success(c, "maintenance exécutée", report)
}

// handleAIStatus probes the AI API with the configured key.
func (h *Handlers) handleAIStatus(c *gin.Context) {
	response.Success(c, "état du service IA", gin.H{
		"reachable": h.aiClient.TestConnection(c.Request.Context()),
	})
}

func (h *Handlers) handleRateLimitGet(c *gin.Context) {
	response.Success(c, "configuration du limiteur", h.limiter.Config())
}

func (h *Handlers) handleRateLimitUpdate(c *gin.Context) {
	var cfg middleware.RateLimiterConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Fail(c, "configuration invalide", nil)
		return
	}
	h.limiter.UpdateConfig(cfg)
	response.Success(c, "configuration appliquée", h.limiter.Config())
}
