package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client used by S3.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores uploads as objects under prefix in bucket.
type S3 struct {
	client  ObjectAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3 loads the default AWS configuration (env, shared config, instance role)
// and returns an S3-backed store. When baseURL is empty or relative, object URLs
// point at the bucket's virtual-hosted endpoint.
func NewS3(ctx context.Context, bucket, prefix, baseURL string) (*S3, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return NewS3WithClient(s3.NewFromConfig(cfg), bucket, prefix, baseURL), nil
}

// NewS3WithClient builds an S3 store around an existing client.
func NewS3WithClient(client ObjectAPI, bucket, prefix, baseURL string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, baseURL: baseURL}
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return strings.TrimRight(s.prefix, "/") + "/" + name
}

// Save uploads body as bucket/prefix/name.
func (s *S3) Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*Object, error) {
	name = cleanName(name)
	if name == "" {
		return nil, errors.New("empty file name")
	}
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return &Object{
		Filename:    name,
		URL:         joinURL(s.baseURL, key),
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Delete removes bucket/prefix/name.
func (s *S3) Delete(ctx context.Context, name string) error {
	name = cleanName(name)
	if name == "" {
		return nil
	}
	key := s.key(name)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
