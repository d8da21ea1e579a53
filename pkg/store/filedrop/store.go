// Package filedrop reads clearinghouse remittance exports out of the S3
// bucket they are dropped into.
package filedrop

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// Client is the slice of the S3 API the store depends on.
type Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Settings struct {
	Bucket string
	Prefix string
}

type Store struct {
	client   Client
	settings Settings
}

func NewClient(ctx context.Context, profile string) (*s3.Client, error) {
	cfg, err := loadConfig(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(*cfg), nil
}

func NewStore(client Client, settings Settings) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if settings.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Store{
		client:   client,
		settings: settings,
	}, nil
}

func loadConfig(ctx context.Context, profile string) (*aws.Config, error) {
	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithSharedConfigProfile(profile),
		config.WithDefaultRegion(DefaultRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

// ListFiles returns every object key under the configured prefix.
func (s *Store) ListFiles(ctx context.Context) ([]string, error) {
	var keys []string
	var continuationToken *string

	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.settings.Bucket),
			Prefix:            aws.String(s.settings.Prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.settings.Bucket, err)
		}

		for _, obj := range resp.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if resp.IsTruncated == nil || !*resp.IsTruncated {
			break
		}
		continuationToken = resp.NextContinuationToken
	}

	return keys, nil
}

// Fetch opens one object for reading. The caller closes the body.
func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.settings.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	return resp.Body, nil
}
