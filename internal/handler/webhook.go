package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Capstone-project-team7/Back/internal/errs"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/pipeline"
)

// IngestRunner runs the ingestion pipeline for one event.
type IngestRunner interface {
	Run(ctx context.Context, ev *model.AnomalyEvent) (*pipeline.Result, error)
}

// WebhookHandler receives anomaly events from the perception service.
type WebhookHandler struct {
	pipe IngestRunner
}

// NewWebhookHandler creates the ingestion webhook handler.
func NewWebhookHandler(pipe IngestRunner) *WebhookHandler {
	return &WebhookHandler{pipe: pipe}
}

// Notify godoc
// POST /api/anomaly/notify
//
// Ingests one anomaly event. Responds 200 once the anomaly row is committed,
// even when later stages degraded; the per-stage outcomes are in the body.
func (h *WebhookHandler) Notify(c *gin.Context) {
	var ev model.AnomalyEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	res, err := h.pipe.Run(c.Request.Context(), &ev)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event", "message": err.Error()})
		case errors.Is(err, errs.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, errs.ErrCctvNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "cctv not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest event"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomaly_id": res.AnomalyID,
		"video_id":   res.VideoID,
		"session_id": res.SessionID,
		"degraded":   res.Degraded(),
		"stages":     res.Stages,
		"warnings":   res.Warnings(),
	})
}
