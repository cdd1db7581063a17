// Package storage wraps S3-compatible object storage for ad image blobs.
// Works against AWS S3, Cloudflare R2 and MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
)

// Client wraps the AWS S3 client for image blob storage
type Client struct {
	client   *s3.Client
	bucket   string
	cdnURL   string // optional CDN base URL
	basePath string // prefix for all objects (e.g. "ads/")
}

// Config holds S3-compatible storage configuration
type Config struct {
	Endpoint        string // e.g. https://xxx.r2.cloudflarestorage.com
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNURL          string
	BasePath        string
	ForcePathStyle  bool // true for MinIO/R2
}

// NewClient creates an S3-compatible storage client
func NewClient(cfg Config) (*Client, error) {
	opts := func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}

	client := s3.New(s3.Options{}, opts)

	pkglogger.GetLogger().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", cfg.Endpoint).
		Msg("object storage client initialized")

	return &Client{
		client:   client,
		bucket:   cfg.Bucket,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
		basePath: cfg.BasePath,
	}, nil
}

// Upload stores an image blob and returns its storage key
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	fullKey := c.basePath + key

	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return fullKey, nil
}

// Delete removes a blob. Deleting a missing key is not an error on S3,
// which keeps ad deletion idempotent.
func (c *Client) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	if _, err := c.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored key, preferring the CDN
func (c *Client) URL(key string) string {
	if c.cdnURL != "" {
		return c.cdnURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucket, key)
}

// NewImageKey builds a collision-free storage key for an ad image,
// keeping the original extension for content-type sniffing downstream
func NewImageKey(adID uint64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%d/%s%s", adID, uuid.New().String(), ext)
}
