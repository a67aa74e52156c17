package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/models"
)

// ObjectPutter is the part of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PresignFunc returns a time-limited download link for an object key.
type PresignFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)

// PresignTTL is the lifetime of presigned download links.
const PresignTTL = 7 * 24 * time.Hour

// Publisher uploads exported recipes to an S3 bucket.
type Publisher struct {
	client  ObjectPutter
	bucket  string
	presign PresignFunc
	logger  *zap.Logger
}

// NewPublisher creates a publisher for the configured bucket. When presigned
// is true the returned links are presigned GET URLs, for private buckets.
func NewPublisher(s3Config *config.S3Config, presigned bool, logger *zap.Logger) *Publisher {
	p := NewPublisherWithClient(s3Config.Client, s3Config.BucketName, logger)
	if presigned {
		p.presign = s3Config.GeneratePresignedURL
	}
	return p
}

// WithPresign makes Publish return links produced by fn.
func (p *Publisher) WithPresign(fn PresignFunc) *Publisher {
	p.presign = fn
	return p
}

// NewPublisherWithClient creates a publisher over any PutObject implementation.
func NewPublisherWithClient(client ObjectPutter, bucket string, logger *zap.Logger) *Publisher {
	logger = logging.OrNop(logger)
	return &Publisher{client: client, bucket: bucket, logger: logger.Named("publisher")}
}

// ObjectKey returns where the export of recipe is stored in the bucket.
func ObjectKey(recipe models.Recipe) string {
	return fmt.Sprintf("recipe-exports/%s/%s", recipe.ID, Filename(recipe.Title))
}

// Publish renders recipe and uploads the document, returning its download URL.
func (p *Publisher) Publish(ctx context.Context, recipe models.Recipe) (string, error) {
	data, err := Export(recipe)
	if err != nil {
		return "", err
	}

	key := ObjectKey(recipe)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(p.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(ContentType),
		ContentDisposition: aws.String(ContentDisposition(recipe.Title)),
		CacheControl:       aws.String(fmt.Sprintf("max-age=%d", int((24 * time.Hour).Seconds()))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	link := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
	if p.presign != nil {
		link, err = p.presign(ctx, key, PresignTTL)
		if err != nil {
			return "", fmt.Errorf("failed to presign %s: %w", key, err)
		}
	}
	p.logger.Info("Published recipe export",
		zap.String("recipe_id", recipe.ID),
		zap.String("key", key))
	return link, nil
}
