package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	ErrInvalidEvent  = errors.New("invalid anomaly event")
	ErrUserNotFound  = errors.New("user not found")
	ErrCctvNotFound  = errors.New("cctv not found")
	ErrVideoNotFound = errors.New("video not found")
	ErrQuotaNotFound = errors.New("storage quota not found")

	// ErrNotStorageURL marks URLs that carry no object-store domain marker.
	ErrNotStorageURL = errors.New("not an object storage url")
	// ErrSignURL wraps failures from the store's signing API. Callers fall
	// back to the raw URL instead of aborting.
	ErrSignURL = errors.New("presigned url generation failed")
	// ErrNotifyFailed wraps mail transport failures. Committed pipeline
	// stages are never unwound because of it.
	ErrNotifyFailed = errors.New("notification send failed")
)
