// Package objectstore connects to the S3-compatible container holding user documents.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	s3repo "github.com/fastygo/lifetrack/repository/s3"
)

// Settings is the parsed form of a storage connection string.
type Settings struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	PathStyle       bool
}

// ParseConnectionString reads `Key=Value;Key=Value` pairs. Keys are case-insensitive.
func ParseConnectionString(raw string) (Settings, error) {
	s := Settings{Region: "auto", PathStyle: true}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Settings{}, fmt.Errorf("malformed connection string segment %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "endpoint":
			s.Endpoint = value
		case "accesskeyid":
			s.AccessKeyID = value
		case "secretaccesskey":
			s.SecretAccessKey = value
		case "region":
			s.Region = value
		case "pathstyle":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("invalid PathStyle %q: %w", value, err)
			}
			s.PathStyle = b
		}
	}
	if s.Endpoint == "" {
		return Settings{}, errors.New("connection string has no Endpoint")
	}
	if s.AccessKeyID == "" || s.SecretAccessKey == "" {
		return Settings{}, errors.New("connection string has no credentials")
	}
	return s, nil
}

// NewClient builds an S3 client for the configured endpoint.
func NewClient(ctx context.Context, settings Settings) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID, settings.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(settings.Endpoint)
		o.UsePathStyle = settings.PathStyle
	}), nil
}

// BucketAPI is the subset of the S3 client used to manage the container.
type BucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// EnsureBucket creates the container when it does not exist yet.
func EnsureBucket(ctx context.Context, client BucketAPI, bucket string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}
	if !s3repo.IsBucketMissing(err) {
		return fmt.Errorf("head bucket %s: %w", bucket, err)
	}

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	logger.Info("object store container created", zap.String("bucket", bucket))
	return nil
}

// Probe returns a health check that issues HeadBucket with a short deadline.
func Probe(client BucketAPI, bucket string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		return err
	}
}

// Connect parses the connection string, builds the client and prepares the container.
func Connect(ctx context.Context, connection, bucket string, create bool, logger *zap.Logger) (*s3.Client, error) {
	settings, err := ParseConnectionString(connection)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, settings)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if create {
		if err := EnsureBucket(initCtx, client, bucket, logger); err != nil {
			return nil, err
		}
		return client, nil
	}
	if err := Probe(client, bucket)(initCtx); err != nil {
		return nil, fmt.Errorf("object store unreachable: %w", err)
	}
	return client, nil
}
