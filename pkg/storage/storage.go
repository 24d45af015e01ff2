package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
)

// Archive stores generated documents.
type Archive interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// S3Archive keeps report cards in an S3-compatible bucket.
type S3Archive struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewS3Archive builds the archive from config. Static credentials are used
// when provided, otherwise the default AWS credential chain applies.
func NewS3Archive(cfg *config.StorageConfig) (*S3Archive, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return NewS3ArchiveWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewS3ArchiveWithClient is used by tests to inject a fake S3 API.
func NewS3ArchiveWithClient(client s3iface.S3API, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads data and returns the full object key.
func (a *S3Archive) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	fullKey := path.Join(a.prefix, key)
	_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(fullKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fullKey, err)
	}
	return fullKey, nil
}

// Exists checks for an object under the archive prefix.
func (a *S3Archive) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(path.Join(a.prefix, key)),
	})
	if err != nil {
		var aerr awserr.RequestFailure
		if errors.As(err, &aerr) && aerr.StatusCode() == 404 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
