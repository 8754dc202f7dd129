package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/ambryfs/ambryfs-go/internal/credentials"
)

// Config holds the settings for an S3 or S3-compatible store
type Config struct {
	Bucket   string
	Region   string
	Endpoint string // for LocalStack, MinIO and other S3-compatible services
	Prefix   string // key prefix prepended to every blob id

	Credentials *credentials.Credentials
}

// API is the subset of *s3.Client the backend uses
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Backend serves blobs from one bucket
type Backend struct {
	bucket string
	prefix string
	api    API
}

// New creates a backend from cfg. Static credentials are used when valid,
// otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	cfgOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.Credentials != nil && cfg.Credentials.IsValid() {
		cfgOptions = append(cfgOptions, config.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			cfg.Credentials.AccessKeyID,
			cfg.Credentials.SecretAccessKey,
			cfg.Credentials.SessionToken,
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, cfgOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewWithAPI(s3.NewFromConfig(awsCfg, s3Options...), cfg.Bucket, cfg.Prefix), nil
}

// NewWithAPI creates a backend over an existing client.
func NewWithAPI(api API, bucket, prefix string) *Backend {
	return &Backend{bucket: bucket, prefix: prefix, api: api}
}

func (b *Backend) key(id string) string {
	if b.prefix == "" {
		return id
	}
	return strings.TrimSuffix(b.prefix, "/") + "/" + id
}

// Stat returns the object size from HeadObject.
func (b *Backend) Stat(ctx context.Context, id string) (int64, error) {
	out, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		return 0, wrap("head object", id, err)
	}
	if out.ContentLength == nil {
		return 0, fmt.Errorf("head object %s: missing content length", id)
	}
	return *out.ContentLength, nil
}

// Get downloads the whole object.
func (b *Backend) Get(ctx context.Context, id string) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		return nil, wrap("get object", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

// Delete removes the object. S3 reports success for missing keys too.
func (b *Backend) Delete(ctx context.Context, id string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(id)),
	})
	if err != nil {
		return wrap("delete object", id, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

func wrap(op, id string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%s %s: %w", op, id, os.ErrNotExist)
		}
	}
	return fmt.Errorf("failed to %s %s: %w", op, id, err)
}
