package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonathan/sng-admin/internal/apperr"
	"github.com/jonathan/sng-admin/internal/config"
)

// cacheControl marks uploads immutable for a year; names are unique.
const cacheControl = "public, max-age=31536000, immutable"

// Uploader is the subset of the S3 transfer manager used by S3Backend.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Backend stores uploads in a bucket.
type S3Backend struct {
	uploader Uploader
	bucket   string
	prefix   string
	baseURL  string
}

// NewS3Backend creates a backend from an uploader. baseURL is the public
// location of the bucket root.
func NewS3Backend(uploader Uploader, bucket, prefix, baseURL string) *S3Backend {
	return &S3Backend{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// NewS3BackendFromConfig builds the AWS client from the default credential
// chain, honouring S3_ENDPOINT for S3-compatible stores.
func NewS3BackendFromConfig(ctx context.Context, cfg config.AssetConfig) (*S3Backend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Backend(manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix, publicBaseURL(cfg)), nil
}

// publicBaseURL picks the URL objects are served from.
func publicBaseURL(cfg config.AssetConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.S3Endpoint != "":
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

// Name implements Backend.
func (b *S3Backend) Name() string { return "s3" }

// Put implements Backend.
func (b *S3Backend) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := b.prefix + name
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.BlobUploadFailed, "s3 upload "+key, err)
	}
	return b.baseURL + "/" + key, nil
}

// NewBackend picks the upload destination: S3 when a bucket is configured,
// nothing on a serverless runtime, the local directory otherwise.
func NewBackend(ctx context.Context, cfg config.AssetConfig, serverless bool) (Backend, error) {
	if cfg.UseS3() {
		backend, err := NewS3BackendFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
	if serverless {
		return nil, nil
	}
	return NewLocalBackend(cfg.UploadsDir, cfg.PublicPrefix), nil
}
