package providers

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
)

// S3Archive implements voice.Archive on an S3 compatible bucket
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive creates an archive for cfg.Bucket. Static credentials are used
// when set, otherwise the default AWS credential chain.
func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("audio archive is disabled")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Put uploads the recording under the archive prefix
func (a *S3Archive) Put(ctx context.Context, key string, audio voice.Audio) error {
	contentType := audio.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(path.Join(a.prefix, key)),
		Body:          bytes.NewReader(audio.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(audio.Data))),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

var _ voice.Archive = (*S3Archive)(nil)
