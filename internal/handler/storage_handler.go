package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/service"
)

// StorageHandler serves per-user storage quota usage.
type StorageHandler struct {
	svc *service.QuotaService
}

// NewStorageHandler creates a storage handler.
func NewStorageHandler(svc *service.QuotaService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

// Usage godoc
// GET /api/v1/storage?user_id=N
func (h *StorageHandler) Usage(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	usage, err := h.svc.Usage(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrQuotaNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "storage quota not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read storage usage"})
		return
	}
	c.JSON(http.StatusOK, usage)
}
