package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// DeleteAPI is the slice of the S3 client the remover needs.
type DeleteAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Remover deletes objects from the backing store (explicit-delete flow).
type Remover struct {
	api    DeleteAPI
	bucket string
	log    *zap.Logger
}

// NewRemover creates an object remover.
func NewRemover(bucket string, api DeleteAPI, log *zap.Logger) *Remover {
	return &Remover{api: api, bucket: bucket, log: log}
}

// Remove deletes one object by key.
func (r *Remover) Remove(ctx context.Context, key string) error {
	key = normalizeKey(key)
	_, err := r.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	r.log.Info("deleted object", zap.String("key", key))
	return nil
}
