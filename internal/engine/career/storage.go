package career

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectStoreConfig configures the résumé archive. Endpoint is set for
// S3-compatible services such as Cloudflare R2 or MinIO.
type ObjectStoreConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// ObjectStore archives raw résumé uploads in an S3 bucket.
type ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewObjectStore builds an S3 client. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewObjectStore(ctx context.Context, c ObjectStoreConfig) (*ObjectStore, error) {
	if c.Bucket == "" {
		return nil, errors.New("objectstore: bucket is required")
	}
	region := c.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &ObjectStore{client: client, bucket: c.Bucket}, nil
}

// ResumeKey builds resumes/YYYY/MM/DD/<uuid>-<name>.
func ResumeKey(fileName string, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, path.Base(fileName))
	if name == "" || name == "." {
		name = "resume"
	}
	return fmt.Sprintf("resumes/%s/%s-%s", now.UTC().Format("2006/01/02"), uuid.NewString(), name)
}

// PutResume uploads data under key.
func (s *ObjectStore) PutResume(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	slog.Debug("resume archived", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// GetResume downloads the object at key.
func (s *ObjectStore) GetResume(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(io.LimitReader(out.Body, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("objectstore: read %s: %w", key, err)
	}
	return data, nil
}
