package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Capstone-project-team7/Back/internal/service"
)

// AnomalyHandler serves the anomaly record listing.
type AnomalyHandler struct {
	svc *service.AnomalyService
}

// NewAnomalyHandler creates an anomaly handler.
func NewAnomalyHandler(svc *service.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{svc: svc}
}

// List godoc
// GET /api/v1/anomalies?user_id=N
func (h *AnomalyHandler) List(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	items, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list anomalies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
