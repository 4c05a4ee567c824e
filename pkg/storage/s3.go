package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
	// ProviderCustom covers any endpoint speaking the S3 protocol (Supabase Storage, MinIO)
	ProviderCustom Provider = "custom"
)

// MaxPresignTTL is the longest validity SigV4 accepts for a presigned URL
const MaxPresignTTL = 7 * 24 * time.Hour

// Config holds configuration for S3-compatible storage
type Config struct {
	Provider        Provider
	Endpoint        string // Required for wasabi/custom, e.g. "s3.eu-central-1.wasabisys.com"
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"eu-west-2":      "s3.eu-west-2.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
}

// S3Store implements domain.DocumentStorage on an S3 bucket
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewS3Store creates an S3 client with the given config
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if cfg.Provider == ProviderWasabi && endpoint == "" {
		endpoint = WasabiEndpoints[cfg.Region]
		if endpoint == "" {
			return nil, fmt.Errorf("unknown Wasabi region: %s", cfg.Region)
		}
	}

	var client *s3.Client
	switch cfg.Provider {
	case ProviderWasabi, ProviderCustom:
		if endpoint == "" {
			return nil, errors.New("storage: endpoint required for provider " + string(cfg.Provider))
		}
		if !strings.HasPrefix(endpoint, "http") {
			endpoint = "https://" + endpoint
		}
		// Non-AWS providers require path-style addressing
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	default:
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
	}, nil
}

// Store uploads data under folder with a random object name
func (s *S3Store) Store(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	key := ObjectKey(folder, contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return key, nil
}

// AccessURL presigns a GET for objectPath. ttl is capped at MaxPresignTTL.
func (s *S3Store) AccessURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	if ttl <= 0 || ttl > MaxPresignTTL {
		ttl = MaxPresignTTL
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}
	return req.URL, nil
}

func (s *S3Store) Delete(ctx context.Context, objectPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// HealthCheck verifies the bucket is reachable
func (s *S3Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectKey builds "<folder>/<uuid><ext>" with the extension derived from contentType
func ObjectKey(folder, contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "application/pdf":
		ext = ".pdf"
	}
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}
