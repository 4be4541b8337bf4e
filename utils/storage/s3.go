package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/David-999-david/man-app-server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Client struct {
	cfg           config.StorageConfig
	s3Client      *s3.Client
	uploader      *manager.Uploader
	presignClient *s3.PresignClient
}

// NewClient builds the S3 client through the default credential provider
// chain (env vars locally, IAM role in production).
func NewClient(ctx context.Context, cfg config.StorageConfig) (*Client, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx, aws_config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config for S3: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	log.Println("✅ AWS S3 client initialized. Bucket:", cfg.Bucket)

	return &Client{
		cfg:           cfg,
		s3Client:      s3Client,
		uploader:      manager.NewUploader(s3Client),
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload file to S3: %w", err)
	}
	return nil
}

// PresignURL mints a time-limited URL for the object; objects are never
// publicly readable.
func (c *Client) PresignURL(key string) (string, error) {
	req, err := c.presignClient.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign URL: %w", err)
	}
	return req.URL, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete S3 object %s: %w", key, err)
	}
	return nil
}
