// Package gallery publishes styled food photos to S3-compatible storage.
package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dukerupert/reciperescue/internal/model"
)

var ErrDisabled = errors.New("gallery not configured")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// PublicBaseURL, when set, is joined with the object key to form the
	// returned link. Otherwise a presigned GET link is returned.
	PublicBaseURL string
	LinkTTL       time.Duration
}

func (c Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Gallery uploads images and returns links to them.
type Gallery struct {
	cfg     Config
	client  s3Client
	presign presigner
}

// New returns a gallery, or nil when storage is not configured.
func New(cfg Config) *Gallery {
	if !cfg.enabled() {
		return nil
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	if cfg.LinkTTL <= 0 {
		cfg.LinkTTL = 24 * time.Hour
	}
	client := newS3Client(cfg)
	return &Gallery{cfg: cfg, client: client, presign: s3.NewPresignClient(client)}
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Publish uploads img under the kitchen's prefix and returns its link.
func (g *Gallery) Publish(ctx context.Context, kitchenID string, img model.StyledImage) (string, error) {
	if g == nil {
		return "", ErrDisabled
	}

	key := fmt.Sprintf("stylist/%s/%s%s", kitchenID, uuid.NewString(), extension(img.MIMEType))
	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentLength: aws.Int64(int64(len(img.Data))),
		ContentType:   aws.String(img.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	if g.cfg.PublicBaseURL != "" {
		return strings.TrimRight(g.cfg.PublicBaseURL, "/") + "/" + key, nil
	}

	req, err := g.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(g.cfg.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign link: %w", err)
	}
	return req.URL, nil
}

func extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
