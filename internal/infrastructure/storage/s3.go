// Package storage provides object storage for exported meal plans
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/ports/outbound"
)

// S3Storage uploads documents to a single bucket under a key prefix
type S3Storage struct {
	client s3iface.S3API
	bucket string
	prefix string
	logger *zap.Logger
}

var _ outbound.StorageService = (*S3Storage)(nil)

// NewS3Storage creates an S3 session from the AWS configuration. A custom
// endpoint switches to path-style addressing for S3-compatible stores.
func NewS3Storage(cfg config.AWSConfig, logger *zap.Logger) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3StorageWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

// NewS3StorageWithClient wraps an existing S3 client
func NewS3StorageWithClient(client s3iface.S3API, bucket, prefix string, logger *zap.Logger) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("s3"),
	}
}

// Upload stores body under the prefixed key and returns its s3:// location
func (s *S3Storage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	objectKey := path.Join(s.prefix, key)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", objectKey),
		zap.Int("bytes", len(body)),
	)

	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}
