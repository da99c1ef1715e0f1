package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"tripwise/pkg/utils"
)

const ServiceName = "tripwise"

type HealthController struct {
	now func() time.Time
}

func NewHealthController() *HealthController {
	return &HealthController{now: time.Now}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /health [get]
func (h *HealthController) Health(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}, "")
}
