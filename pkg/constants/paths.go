package constants

// HTTP route paths.
const (
	PathHealth = "/health"
	PathReady  = "/ready"

	PathAnomalyNotify = "/api/anomaly/notify"

	PathAPIv1            = "/api/v1"
	PathUserNotification = "/user/notification"
	PathDashboard        = "/dashboard/:month"
	PathStorage          = "/storage"
	PathVideos           = "/videos"
	PathAnomalies        = "/anomalies"
)
