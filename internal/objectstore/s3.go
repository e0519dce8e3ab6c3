// Package objectstore stores lab document files in S3.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Client wraps an S3 client bound to a single bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New loads the default AWS config for the given region and returns a
// Client for the bucket.
func New(ctx context.Context, region, bucket string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Client{s3: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Put uploads an object.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting s3 object %s: %w", key, err)
	}
	return nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting s3 object %s: %w", key, err)
	}
	return nil
}

// LabObjectKey builds a unique object key for a user's lab document,
// preserving the original file extension.
func LabObjectKey(userID, filename string) string {
	return fmt.Sprintf("labs/%s/%s%s", userID, uuid.New(), filepath.Ext(filename))
}
