package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/spec-kit/device-cost-service/internal/config"
)

// ErrPublishingDisabled is returned when no bucket is configured.
var ErrPublishingDisabled = errors.New("share publishing is not configured")

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Published locates an uploaded share image.
type Published struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// S3Publisher uploads share images and hands out presigned download links.
type S3Publisher struct {
	bucket    string
	ttl       time.Duration
	putter    objectPutter
	presigner getPresigner
	now       func() time.Time
}

// NewS3Publisher builds a client for cfg. Static credentials are used when
// an access key is set; otherwise the default AWS chain applies.
func NewS3Publisher(ctx context.Context, cfg config.ShareConfig) (*S3Publisher, error) {
	if !cfg.Enabled() {
		return nil, ErrPublishingDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Publisher(cfg.S3Bucket, cfg.URLTTL(), client, s3.NewPresignClient(client)), nil
}

func newS3Publisher(bucket string, ttl time.Duration, putter objectPutter, presigner getPresigner) *S3Publisher {
	return &S3Publisher{bucket: bucket, ttl: ttl, putter: putter, presigner: presigner, now: time.Now}
}

// ObjectKey is where a user's share image is stored.
func ObjectKey(userID string, at time.Time) string {
	return fmt.Sprintf("share/%s/%d/%02d/%02d/%s.png", userID, at.Year(), at.Month(), at.Day(), uuid.NewString())
}

// Publish uploads png and returns a presigned GET link.
func (p *S3Publisher) Publish(ctx context.Context, userID string, png []byte) (*Published, error) {
	now := p.now().UTC()
	key := ObjectKey(userID, now)

	if _, err := p.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(png),
		ContentLength: aws.Int64(int64(len(png))),
		ContentType:   aws.String("image/png"),
	}); err != nil {
		return nil, fmt.Errorf("upload share image: %w", err)
	}

	req, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign share image: %w", err)
	}

	return &Published{Key: key, URL: req.URL, ExpiresAt: now.Add(p.ttl)}, nil
}
