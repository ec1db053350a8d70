package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/service"
)

// UserHandler handles the per-user notification toggle.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateNotification godoc
// PUT /api/v1/user/notification
func (h *UserHandler) UpdateNotification(c *gin.Context) {
	var req model.NotificationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.svc.SetNotification(c.Request.Context(), req.UserID, *req.Notification); err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "notification": *req.Notification})
}
