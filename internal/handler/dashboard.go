package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Capstone-project-team7/Back/internal/service"
)

// DashboardHandler serves the monthly anomaly calendar.
type DashboardHandler struct {
	svc *service.AggregateService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(svc *service.AggregateService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Monthly godoc
// GET /api/v1/dashboard/:month?user_id=N
//
// month is yyyy-MM. Only days with at least one anomaly appear.
func (h *DashboardHandler) Monthly(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	month := c.Param("month")

	days, err := h.svc.Monthly(c.Request.Context(), userID, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}
