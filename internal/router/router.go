package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Capstone-project-team7/Back/internal/handler"
	"github.com/Capstone-project-team7/Back/pkg/constants"
)

const requestIDHeader = "X-Request-ID"

// New builds the HTTP router.
func New(
	webhook *handler.WebhookHandler,
	users *handler.UserHandler,
	dashboard *handler.DashboardHandler,
	storage *handler.StorageHandler,
	videos *handler.VideoHandler,
	anomalies *handler.AnomalyHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// Perception service webhook
	r.POST(constants.PathAnomalyNotify, webhook.Notify)

	v1 := r.Group(constants.PathAPIv1)
	{
		v1.PUT(constants.PathUserNotification, users.UpdateNotification)
		v1.GET(constants.PathDashboard, dashboard.Monthly)
		v1.GET(constants.PathStorage, storage.Usage)
		v1.GET(constants.PathVideos, videos.List)
		v1.GET(constants.PathVideos+"/:id", videos.Get)
		v1.DELETE(constants.PathVideos, videos.Delete)
		v1.GET(constants.PathAnomalies, anomalies.List)
	}

	return r
}

// requestID tags every request with an id for log correlation, preserving a
// caller-supplied one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}
