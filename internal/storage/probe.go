package storage

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/Capstone-project-team7/Back/internal/config"
)

// durationMetadataKey is the user-defined metadata key the recorder writes
// alongside each clip. Reading it avoids parsing the media container.
const durationMetadataKey = "video-duration"

// HeadAPI is the slice of the S3 client the probe needs.
type HeadAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Probe reads object size and playable duration from the store. Every
// failure mode degrades to a safe default; a probe never aborts ingestion.
type Probe struct {
	api          HeadAPI
	addr         *Addressing
	bucket       string
	timeout      time.Duration
	fallbackSize int64
	log          *zap.Logger

	// injectable for tests
	probeDuration func(ctx context.Context, url string) (float64, error)
	headLength    func(ctx context.Context, url string) (int64, error)
}

// NewProbe creates an object probe bounded by the configured timeout.
func NewProbe(cfg *config.Config, api HeadAPI, addr *Addressing, log *zap.Logger) *Probe {
	return &Probe{
		api:           api,
		addr:          addr,
		bucket:        cfg.S3.Bucket,
		timeout:       time.Duration(cfg.S3.ProbeTimeout) * time.Second,
		fallbackSize:  cfg.S3.FallbackSize,
		log:           log,
		probeDuration: ffprobeDuration,
		headLength:    httpContentLength,
	}
}

// FallbackSize is the default byte estimate used when size truly cannot be
// determined.
func (p *Probe) FallbackSize() int64 { return p.fallbackSize }

// Size returns the object's byte size from store metadata, or 0 when the key
// is missing or metadata is unavailable. The caller decides the fallback.
func (p *Probe) Size(ctx context.Context, key string) int64 {
	out, err := p.head(ctx, key)
	if err != nil {
		p.log.Warn("object metadata unavailable", zap.String("key", key), zap.Error(err))
		return 0
	}
	return aws.ToInt64(out.ContentLength)
}

// SizeWithFallback measures the object size via metadata, then via an HTTP
// HEAD on a presigned URL, then falls back to the default estimate.
// measured is false only when the fallback estimate was used.
func (p *Probe) SizeWithFallback(ctx context.Context, key string) (size int64, measured bool) {
	if size := p.Size(ctx, key); size > 0 {
		return size, true
	}
	signed, err := p.addr.SignURL(ctx, key, OpDownload)
	if err != nil {
		return p.fallbackSize, false
	}
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	n, err := p.headLength(probeCtx, signed)
	if err != nil || n <= 0 {
		p.log.Info("size unmeasurable, using fallback estimate",
			zap.String("key", key), zap.Int64("fallback_bytes", p.fallbackSize))
		return p.fallbackSize, false
	}
	return n, true
}

// Duration returns the clip's playable duration in seconds. Fast path reads
// the recorder's user metadata; slow path probes the container over a signed
// URL. measured reports whether either path produced a real reading; a
// measured zero means the store holds a genuinely unplayable clip, not a
// probe failure.
func (p *Probe) Duration(ctx context.Context, key string) (seconds float64, playable, measured bool) {
	out, err := p.head(ctx, key)
	if err == nil {
		if raw, ok := metadataValue(out.Metadata, durationMetadataKey); ok {
			if d, perr := strconv.ParseFloat(raw, 64); perr == nil {
				return d, d > 0, true
			}
			p.log.Warn("unparsable duration metadata", zap.String("key", key), zap.String("value", raw))
		}
	}

	signed, serr := p.addr.SignURL(ctx, key, OpDownload)
	if serr != nil {
		return 0, false, false
	}
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	d, perr := p.probeDuration(probeCtx, signed)
	if perr != nil {
		p.log.Warn("stream probe failed", zap.String("key", key), zap.Error(perr))
		return 0, false, false
	}
	return d, d > 0, true
}

func (p *Probe) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	headCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.api.HeadObject(headCtx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(normalizeKey(key)),
	})
}

// metadataValue looks a key up case-insensitively; the SDK lowercases
// user-metadata keys on the way back.
func metadataValue(md map[string]string, key string) (string, bool) {
	if md == nil {
		return "", false
	}
	if v, ok := md[key]; ok {
		return v, true
	}
	for k, v := range md {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func ffprobeDuration(ctx context.Context, url string) (float64, error) {
	data, err := ffprobe.ProbeURL(ctx, url)
	if err != nil {
		return 0, err
	}
	if data.Format == nil {
		return 0, fmt.Errorf("no container format info")
	}
	return data.Format.DurationSeconds, nil
}

func httpContentLength(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("head %s: status %d", url, resp.StatusCode)
	}
	return resp.ContentLength, nil
}
