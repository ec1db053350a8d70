package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/config"
	"github.com/Capstone-project-team7/Back/internal/errs"
)

// Operation selects the HTTP method a presigned URL grants.
type Operation string

const (
	OpDownload Operation = "download"
	OpUpload   Operation = "upload"
)

const (
	storageHostMarker   = "s3."
	storageDomainMarker = "amazonaws.com"
	domainBoundary      = ".amazonaws.com/"
	videoExt            = ".mp4"
	thumbnailExt        = ".jpg"
	keyTimeLayout       = "20060102_150405"
)

// Presigner is the slice of the S3 presign client the addressing layer needs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Addressing derives object keys, extracts keys from URLs and issues
// presigned URLs. Signed URLs are computed on demand and never stored.
type Addressing struct {
	bucket          string
	videoPrefix     string
	thumbnailPrefix string
	endpointHost    string
	expiry          time.Duration
	presigner       Presigner
	log             *zap.Logger
}

// NewAddressing creates the addressing layer from service config.
func NewAddressing(cfg *config.Config, presigner Presigner, log *zap.Logger) *Addressing {
	endpointHost := ""
	if cfg.S3.Endpoint != "" {
		if u, err := url.Parse(cfg.S3.Endpoint); err == nil {
			endpointHost = u.Host
		}
	}
	return &Addressing{
		bucket:          cfg.S3.Bucket,
		videoPrefix:     cfg.S3.VideoPrefix,
		thumbnailPrefix: cfg.S3.ThumbnailPrefix,
		endpointHost:    endpointHost,
		expiry:          time.Duration(cfg.S3.PresignMinutes) * time.Minute,
		presigner:       presigner,
		log:             log,
	}
}

// VideoKey derives the clip key for one CCTV: clips/<cctvID>_<yyyyMMdd_HHmmss>.mp4.
// The timestamp is processing time, not client-supplied time, so key
// uniqueness does not depend on the perception service's clock. A same-second
// double event for one camera overwrites; accepted as a rare non-fatal risk.
func (a *Addressing) VideoKey(cctvID int64, now time.Time) string {
	return fmt.Sprintf("%s%d_%s%s", a.videoPrefix, cctvID, now.Format(keyTimeLayout), videoExt)
}

// ThumbnailKey derives the thumbnail key from a video key by swapping prefix
// and extension. Returns "" when the input does not carry the video prefix.
func (a *Addressing) ThumbnailKey(videoKey string) string {
	if !strings.HasPrefix(videoKey, a.videoPrefix) {
		return ""
	}
	name := strings.TrimPrefix(videoKey, a.videoPrefix)
	if strings.HasSuffix(name, videoExt) {
		name = strings.TrimSuffix(name, videoExt) + thumbnailExt
	}
	return a.thumbnailPrefix + name
}

// IsStorageURL reports whether the URL points into the backing object store.
// Cheap substring heuristic; never errors.
func (a *Addressing) IsStorageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	if strings.Contains(rawURL, storageHostMarker) && strings.Contains(rawURL, storageDomainMarker) {
		return true
	}
	return a.endpointHost != "" && strings.Contains(rawURL, a.endpointHost)
}

// ExtractKey pulls the object key out of a full storage URL. It recognizes
// the two known asset prefixes anywhere in the path and strips everything
// before them; otherwise it falls back to the domain's path boundary.
// Percent-escaped path separators are decoded before returning.
func (a *Addressing) ExtractKey(rawURL string) (string, error) {
	if !a.IsStorageURL(rawURL) {
		return "", fmt.Errorf("%w: %s", errs.ErrNotStorageURL, rawURL)
	}
	if i := strings.Index(rawURL, "?"); i != -1 {
		rawURL = rawURL[:i]
	}

	var key string
	switch {
	case strings.Contains(rawURL, "/"+a.videoPrefix):
		key = rawURL[strings.Index(rawURL, "/"+a.videoPrefix)+1:]
	case strings.Contains(rawURL, "/"+a.thumbnailPrefix):
		key = rawURL[strings.Index(rawURL, "/"+a.thumbnailPrefix)+1:]
	case strings.Contains(rawURL, domainBoundary):
		key = rawURL[strings.Index(rawURL, domainBoundary)+len(domainBoundary):]
	default:
		u, err := url.Parse(rawURL)
		if err != nil || u.Path == "" {
			return "", fmt.Errorf("%w: no key path in %s", errs.ErrNotStorageURL, rawURL)
		}
		key = strings.TrimPrefix(u.Path, "/")
	}
	return normalizeKey(key), nil
}

// ThumbnailURLFromVideoURL rewrites a full clip URL into its thumbnail URL.
// Returns "" for non-storage URLs.
func (a *Addressing) ThumbnailURLFromVideoURL(videoURL string) string {
	if !a.IsStorageURL(videoURL) {
		return ""
	}
	out := strings.Replace(videoURL, "/"+a.videoPrefix, "/"+a.thumbnailPrefix, 1)
	if strings.HasSuffix(out, videoExt) {
		out = strings.TrimSuffix(out, videoExt) + thumbnailExt
	}
	return out
}

// SignURL issues a time-limited URL for one key and operation. Errors wrap
// errs.ErrSignURL; callers substitute the raw URL instead of aborting.
func (a *Addressing) SignURL(ctx context.Context, key string, op Operation) (string, error) {
	key = normalizeKey(key)
	switch op {
	case OpUpload:
		req, err := a.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(a.expiry))
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrSignURL, err)
		}
		return req.URL, nil
	default:
		req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(a.expiry))
		if err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrSignURL, err)
		}
		return req.URL, nil
	}
}

// MaterializeURL converts a stored storage URL into a presigned download URL
// at read time. Non-storage URLs and signing failures return the input
// unchanged.
func (a *Addressing) MaterializeURL(ctx context.Context, rawURL string) string {
	if rawURL == "" || !a.IsStorageURL(rawURL) {
		return rawURL
	}
	key, err := a.ExtractKey(rawURL)
	if err != nil {
		return rawURL
	}
	signed, err := a.SignURL(ctx, key, OpDownload)
	if err != nil {
		a.log.Warn("presign failed, serving raw url", zap.String("key", key), zap.Error(err))
		return rawURL
	}
	return signed
}

// normalizeKey strips a leading slash and decodes percent escapes, so keys
// extracted from encoded URLs address the same object.
func normalizeKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "%") {
		if decoded, err := url.PathUnescape(key); err == nil {
			key = decoded
		}
	}
	return key
}
