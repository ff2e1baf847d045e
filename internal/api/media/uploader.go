// Package media hands image blobs to the external object store and returns
// their public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/app/observability/metrics"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/config"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// Upload folders. They only namespace object keys.
const (
	FolderPosts = "posts"
	FolderUsers = "users"
)

var _ Uploader = (*S3Uploader)(nil)

// Uploader is the media delegate: blob in, stable public URL out.
type Uploader interface {
	Upload(ctx context.Context, blob *types.Blob, folder string) (string, error)
}

type objectPutter interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type bucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Uploader stores blobs in an S3 compatible bucket (MinIO in development).
type S3Uploader struct {
	logger        *slog.Logger
	putter        objectPutter
	buckets       bucketAPI
	bucket        string
	region        string
	publicBaseURL string
	timeout       time.Duration
}

// NewS3Uploader builds the S3 client from configuration.
func NewS3Uploader(ctx context.Context, cfg config.MediaConfig, logger *slog.Logger) (*S3Uploader, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" || cfg.Endpoint == "" || cfg.Region == "" {
		return nil, errors.New("media endpoint, region, bucket and credentials must be configured")
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for media store: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		o.UsePathStyle = true
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = endpointURL + "/" + cfg.Bucket
	}

	return newS3Uploader(manager.NewUploader(client), client, cfg.Bucket, cfg.Region, publicBaseURL, cfg.UploadTimeout, logger), nil
}

func newS3Uploader(putter objectPutter, buckets bucketAPI, bucket, region, publicBaseURL string, timeout time.Duration, logger *slog.Logger) *S3Uploader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &S3Uploader{
		logger:        logger,
		putter:        putter,
		buckets:       buckets,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		timeout:       timeout,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *S3Uploader) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := u.buckets.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)}); err == nil {
		u.logger.InfoContext(ctx, "Media bucket exists", slog.String("bucket", u.bucket))
		return nil
	}

	u.logger.InfoContext(ctx, "Media bucket not found, creating", slog.String("bucket", u.bucket))
	input := &s3.CreateBucketInput{Bucket: aws.String(u.bucket)}
	if u.region != "" && u.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(u.region),
		}
	}
	if _, err := u.buckets.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", u.bucket, err)
	}
	return nil
}

// Upload stores blob under folder and blocks until the store answers or the
// configured timeout expires. Every failure wraps types.ErrUpload.
func (u *S3Uploader) Upload(ctx context.Context, blob *types.Blob, folder string) (string, error) {
	if blob.Size() == 0 {
		return "", fmt.Errorf("%w: empty blob", types.ErrUpload)
	}
	l := u.logger.With(slog.String("method", "Upload"), slog.String("folder", folder))

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := path.Join(folder, uuid.NewString()+api.ImageExtension(blob.ContentType))
	start := time.Now()
	_, err := u.putter.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String(blob.ContentType),
	})

	m := metrics.Get()
	m.UploadDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.UploadErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Media upload failed", slog.String("key", key), slog.Any("error", err))
		return "", fmt.Errorf("%w: put %s: %w", types.ErrUpload, key, err)
	}

	l.DebugContext(ctx, "Media uploaded", slog.String("key", key), slog.Int("bytes", blob.Size()))
	return u.publicBaseURL + "/" + key, nil
}
