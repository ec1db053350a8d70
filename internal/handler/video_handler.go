package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/service"
)

// VideoHandler serves the video gallery: paged listing and deletion.
type VideoHandler struct {
	videos *service.VideoService
	quotas *service.QuotaService
	log    *zap.Logger
}

// NewVideoHandler creates a video handler.
func NewVideoHandler(videos *service.VideoService, quotas *service.QuotaService, log *zap.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, quotas: quotas, log: log}
}

// List godoc
// GET /api/v1/videos?user_id=N&start_date=yyyy-MM-dd&end_date=yyyy-MM-dd&category=fire&page=1
func (h *VideoHandler) List(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	filter := service.VideoFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Category:  c.Query("category"),
		Page:      page,
	}

	resp, err := h.videos.ListByUser(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// GET /api/v1/videos/:id?user_id=N
func (h *VideoHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	videoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || videoID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video id required"})
		return
	}

	item, err := h.videos.ByID(c.Request.Context(), userID, videoID)
	if err != nil {
		if errors.Is(err, errs.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load video"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete godoc
// DELETE /api/v1/videos
//
// Deletes the caller's own videos, releases the freed bytes from the quota
// and reports which ids were actually removed.
func (h *VideoHandler) Delete(c *gin.Context) {
	var req model.VideoDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	deleted, freed, err := h.videos.Delete(c.Request.Context(), req.UserID, req.VideoIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete videos"})
		return
	}

	if freed > 0 {
		if err := h.quotas.ReleaseUsage(c.Request.Context(), req.UserID, freed); err != nil {
			if !errors.Is(err, errs.ErrQuotaNotFound) {
				h.log.Warn("quota release failed",
					zap.Int64("user_id", req.UserID), zap.Int64("freed_bytes", freed), zap.Error(err))
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted_ids": deleted,
		"freed_bytes": freed,
	})
}
