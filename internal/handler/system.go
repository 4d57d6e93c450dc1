package handlers

import (
	"github.com/gin-gonic/gin"

	"SignBridge/pkg/response"
)

func (h *Handlers) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
	}
	response.Success(c, "health", status)
}
