package s3

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-acme/lego/v4/challenge/http01"

	"github.com/dmitrymomot/certpipe/core/logger"
)

// S3Client defines the S3 operations used by the publisher.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// Config contains configuration for the S3-backed challenge publisher.
// The bucket is expected to serve the domain's static site, so objects keyed
// .well-known/acme-challenge/{token} answer http-01 probes.
type Config struct {
	// Bucket is the bucket backing the domain's site root.
	Bucket string `env:"CERTPIPE_S3_BUCKET"`

	// Region is the bucket's AWS region.
	Region string `env:"CERTPIPE_S3_REGION"`

	// AccessKeyID and SecretKey are optional static credentials. When empty
	// the default chain (environment, IAM role) applies.
	AccessKeyID string `env:"CERTPIPE_S3_ACCESS_KEY_ID"`
	SecretKey   string `env:"CERTPIPE_S3_SECRET_KEY"`

	// Endpoint overrides the service endpoint for S3-compatible services.
	Endpoint string `env:"CERTPIPE_S3_ENDPOINT"`

	// ForcePathStyle is required for MinIO and some S3-compatible services.
	ForcePathStyle bool `env:"CERTPIPE_S3_FORCE_PATH_STYLE"`
}

// Publisher writes http-01 key authorizations into an S3 bucket and removes
// them after the order settles.
type Publisher struct {
	client S3Client
	bucket string
	log    *slog.Logger
}

// Option defines a function that configures a Publisher.
type Option func(*Publisher)

// WithClient sets a custom pre-configured S3 client.
// Primarily used for testing with mocks.
func WithClient(client S3Client) Option {
	return func(p *Publisher) { p.client = client }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(p *Publisher) { p.log = log }
}

// New creates a Publisher for the configured bucket.
func New(ctx context.Context, cfg Config, opts ...Option) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	p := &Publisher{
		bucket: cfg.Bucket,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("s3"))

	if p.client == nil {
		if cfg.Region == "" {
			return nil, ErrRegionRequired
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}

		p.client = s3aws.NewFromConfig(awsConfig, func(o *s3aws.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return p, nil
}

// Publish uploads the key authorization so the CA finds it at
// /.well-known/acme-challenge/{token} on the domain.
func (p *Publisher) Publish(ctx context.Context, domain, token, keyAuth string) error {
	key := challengeObjectKey(token)

	_, err := p.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(keyAuth)),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return classifyError(err, "publish challenge")
	}

	p.log.Info("challenge published", logger.Domain(domain), slog.String("key", key))
	return nil
}

// Unpublish removes the challenge object. S3 deletes are idempotent, so an
// object that is already gone is not an error.
func (p *Publisher) Unpublish(ctx context.Context, domain, token string) error {
	key := challengeObjectKey(token)

	_, err := p.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classifyError(err, "remove challenge")
	}

	p.log.Info("challenge removed", logger.Domain(domain), slog.String("key", key))
	return nil
}

// challengeObjectKey maps a token to its object key, the well-known challenge
// path without the leading slash.
func challengeObjectKey(token string) string {
	return strings.TrimPrefix(http01.ChallengePath(token), "/")
}
