package handlers

import (
	"net/http"

	"ai-trend-tracker/internal/services"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	pipeline *services.PipelineService
}

func NewStatsHandler(pipeline *services.PipelineService) *StatsHandler {
	return &StatsHandler{
		pipeline: pipeline,
	}
}

// Stats returns project and observation counts plus recent per-day activity
func (h *StatsHandler) Stats(c *gin.Context) {
	stats, err := h.pipeline.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
