package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Capstone-project-team7/Back/internal/config"
	"github.com/Capstone-project-team7/Back/internal/errs"
)

type fakePresigner struct {
	getURL string
	putURL string
	err    error
	calls  int
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.getURL}, nil
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.putURL}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.S3.Bucket = "clips-bucket"
	cfg.S3.VideoPrefix = "clips/"
	cfg.S3.ThumbnailPrefix = "thumbnails/"
	cfg.S3.PresignMinutes = 10
	cfg.S3.ProbeTimeout = 2
	cfg.S3.FallbackSize = 5 * 1024 * 1024
	return cfg
}

func newTestAddressing(p Presigner) *Addressing {
	return NewAddressing(testConfig(), p, zap.NewNop())
}

func TestVideoKey(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	assert.Equal(t, "clips/7_20250314_150926.mp4", a.VideoKey(7, now))
}

func TestThumbnailKey(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})

	assert.Equal(t, "thumbnails/7_20250314_150926.jpg", a.ThumbnailKey("clips/7_20250314_150926.mp4"))
	assert.Equal(t, "", a.ThumbnailKey("other/7.mp4"))
}

func TestIsStorageURL(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})

	assert.True(t, a.IsStorageURL("https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_000000.mp4"))
	assert.False(t, a.IsStorageURL("https://example.com/video.mp4"))
	assert.False(t, a.IsStorageURL(""))
}

func TestIsStorageURLCustomEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.S3.Endpoint = "http://minio.local:9000"
	a := NewAddressing(cfg, &fakePresigner{}, zap.NewNop())

	assert.True(t, a.IsStorageURL("http://minio.local:9000/clips-bucket/clips/1_20250101_000000.mp4"))
}

func TestExtractKey(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "video prefix",
			url:  "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4",
			want: "clips/1_20250101_120000.mp4",
		},
		{
			name: "thumbnail prefix",
			url:  "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/thumbnails/1_20250101_120000.jpg",
			want: "thumbnails/1_20250101_120000.jpg",
		},
		{
			name: "domain boundary fallback",
			url:  "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/archive/old.mp4",
			want: "archive/old.mp4",
		},
		{
			name: "query string stripped",
			url:  "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4?X-Amz-Expires=600&X-Amz-Signature=abc",
			want: "clips/1_20250101_120000.mp4",
		},
		{
			name: "percent escapes decoded",
			url:  "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips%2F1_20250101_120000.mp4",
			want: "clips/1_20250101_120000.mp4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ExtractKey(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractKeyNonStorageURL(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})

	_, err := a.ExtractKey("https://example.com/clips/1.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrNotStorageURL)
}

func TestExtractKeyRoundTrip(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})
	key := a.VideoKey(42, time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC))
	url := "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/" + key

	got, err := a.ExtractKey(url)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestThumbnailURLFromVideoURL(t *testing.T) {
	a := newTestAddressing(&fakePresigner{})

	got := a.ThumbnailURLFromVideoURL("https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4")
	assert.Equal(t, "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/thumbnails/1_20250101_120000.jpg", got)

	assert.Equal(t, "", a.ThumbnailURLFromVideoURL("https://example.com/clips/1.mp4"))
}

func TestSignURL(t *testing.T) {
	p := &fakePresigner{getURL: "https://signed.example/get", putURL: "https://signed.example/put"}
	a := newTestAddressing(p)

	got, err := a.SignURL(context.Background(), "clips/1.mp4", OpDownload)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/get", got)

	got, err = a.SignURL(context.Background(), "clips/1.mp4", OpUpload)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/put", got)
}

func TestSignURLError(t *testing.T) {
	p := &fakePresigner{err: errors.New("boom")}
	a := newTestAddressing(p)

	_, err := a.SignURL(context.Background(), "clips/1.mp4", OpDownload)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSignURL)
}

func TestMaterializeURL(t *testing.T) {
	p := &fakePresigner{getURL: "https://signed.example/get"}
	a := newTestAddressing(p)

	storageURL := "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4"
	assert.Equal(t, "https://signed.example/get", a.MaterializeURL(context.Background(), storageURL))

	// Non-storage URLs pass through untouched.
	external := "https://example.com/video.mp4"
	assert.Equal(t, external, a.MaterializeURL(context.Background(), external))
	assert.Equal(t, "", a.MaterializeURL(context.Background(), ""))
}

func TestMaterializeURLSignFailureFallsBack(t *testing.T) {
	p := &fakePresigner{err: errors.New("credentials expired")}
	a := newTestAddressing(p)

	storageURL := "https://clips-bucket.s3.ap-northeast-2.amazonaws.com/clips/1_20250101_120000.mp4"
	assert.Equal(t, storageURL, a.MaterializeURL(context.Background(), storageURL))
}
