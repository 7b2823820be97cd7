// Package storage uploads property images to S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stwalsh4118/homefinder/api/internal/config"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
)

// ErrDisabled is returned by Disabled for every operation.
var ErrDisabled = errors.New("image storage is not configured")

// ImageStore stores image objects and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, propertyID int64, filename string, r io.Reader, size int64, contentType string) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// MinioStorage is an ImageStore backed by a MinIO or S3 bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinioStorage connects to the endpoint and creates the bucket if missing.
func NewMinioStorage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("Created image bucket", map[string]interface{}{"bucket": cfg.Bucket})
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Upload streams r into the bucket under a generated key and returns the
// object's URL together with the key needed to delete it.
func (s *MinioStorage) Upload(ctx context.Context, propertyID int64, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	key := ObjectKey(propertyID, filename)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": path.Base(filename)},
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, s.bucket, err)
	}

	s.log.Debug("Uploaded image", map[string]interface{}{
		"bucket": info.Bucket,
		"key":    info.Key,
		"size":   info.Size,
	})

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), key, nil
}

// Delete removes the object. Removing a missing key is not an error.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// ObjectKey builds "properties/<id>/<uuid><ext>" from the upload's filename.
func ObjectKey(propertyID int64, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	return fmt.Sprintf("properties/%d/%s%s", propertyID, uuid.NewString(), ext)
}

// Disabled is used when no storage endpoint is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, int64, string, io.Reader, int64, string) (string, string, error) {
	return "", "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error { return ErrDisabled }
