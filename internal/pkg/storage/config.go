package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/revivapix/RevivaPix/internal/pkg/env"
)

// Config holds S3 storage configuration for restoration artifacts
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN/public base for object URLs
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   env.GetEnv("S3_PUBLIC_BASE_URL", ""),
	}

	if config.AccessKeyID == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID is required")
	}
	if config.SecretAccessKey == "" {
		return nil, errors.New("S3_SECRET_ACCESS_KEY is required")
	}
	if config.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required")
	}

	return config, nil
}

// OriginalKey builds the object key for an uploaded original
func (c *Config) OriginalKey(imageUUID, fileExtension string) string {
	return fmt.Sprintf("originals/%s%s", imageUUID, fileExtension)
}

// ProcessedKey builds the object key for a restored result
func (c *Config) ProcessedKey(imageUUID string) string {
	return fmt.Sprintf("processed/%s.jpg", imageUUID)
}

// PreviewKey builds the object key for the small preview variant
func (c *Config) PreviewKey(imageUUID string) string {
	return fmt.Sprintf("previews/%s.jpg", imageUUID)
}

// ObjectURL returns the public URL for an object key
func (c *Config) ObjectURL(objectKey string) string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/") + "/" + objectKey
	}
	if c.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.EndpointURL, "/"), c.BucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
}
