package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ikkim/udonggeum-storefront/config"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
)

// Presigner is the part of s3.PresignClient the resolver needs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// MediaResolver turns the media references the storefront API stores
// (absolute URLs or bucket keys) into URLs a browser can load.
type MediaResolver struct {
	baseURL   string
	bucket    string
	ttl       time.Duration
	presigner Presigner
}

func NewMediaResolver(baseURL, bucket string, ttl time.Duration, presigner Presigner) *MediaResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MediaResolver{
		baseURL:   strings.TrimRight(baseURL, "/"),
		bucket:    bucket,
		ttl:       ttl,
		presigner: presigner,
	}
}

// NewMediaResolverFromConfig builds the S3 presigner only when a bucket is
// configured and no public base URL is.
func NewMediaResolverFromConfig(ctx context.Context, cfg config.MediaConfig) *MediaResolver {
	if cfg.BaseURL != "" || cfg.S3.Bucket == "" {
		return NewMediaResolver(cfg.BaseURL, "", cfg.PresignTTL, nil)
	}

	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.S3.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.S3.AccessKeyID,
				cfg.S3.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.S3.Region}
		}
	}

	presigner := s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return NewMediaResolver("", cfg.S3.Bucket, cfg.PresignTTL, presigner)
}

// ResolveURL returns absolute URLs untouched, joins keys onto the public base
// URL, or presigns them against the bucket. With neither configured the
// reference is returned as-is.
func (m *MediaResolver) ResolveURL(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || isAbsolute(ref) {
		return ref
	}
	key := strings.TrimLeft(ref, "/")

	if m.baseURL != "" {
		return fmt.Sprintf("%s/%s", m.baseURL, key)
	}

	if m.presigner != nil && m.bucket != "" {
		req, err := m.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(m.ttl))
		if err != nil {
			logger.Warn("Failed to presign media URL", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return ref
		}
		return req.URL
	}

	return ref
}

// FirstImage picks the first image-typed media entry that points at an actual
// file, resolved to a public URL.
func (m *MediaResolver) FirstImage(ctx context.Context, media []model.MediaFile) (string, bool) {
	for _, f := range media {
		if f.URL == "" || IsOpaqueStorageRef(f.URL) || !IsImage(f) {
			continue
		}
		return m.ResolveURL(ctx, f.URL), true
	}
	return "", false
}

// ProductImage prefers the product's own imageUrl and falls back to its gallery.
func (m *MediaResolver) ProductImage(ctx context.Context, p model.Product) (string, bool) {
	if p.ImageURL != nil && *p.ImageURL != "" && !IsOpaqueStorageRef(*p.ImageURL) {
		return m.ResolveURL(ctx, *p.ImageURL), true
	}
	return m.FirstImage(ctx, p.MediaFiles)
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".avif": true, ".svg": true, ".bmp": true,
}

// IsImage accepts "image", "photo" or an image/* MIME type. Untyped entries
// count when the file extension is an image one.
func IsImage(f model.MediaFile) bool {
	typ := strings.ToLower(strings.TrimSpace(f.MediaTyp))
	switch {
	case typ == "image", typ == "img", typ == "photo", strings.HasPrefix(typ, "image/"):
		return true
	case typ != "":
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(stripQuery(f.URL)))]
}

// IsOpaqueStorageRef reports references that are a bare storage GUID rather
// than a loadable file, e.g. "9b2f0c1e-7d4a-4f1b-a3c2-0e5d6f7a8b9c".
func IsOpaqueStorageRef(ref string) bool {
	seg := path.Base(strings.Trim(stripQuery(ref), "/"))
	if path.Ext(seg) != "" {
		return false
	}
	_, err := uuid.Parse(seg)
	return err == nil
}

func isAbsolute(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:")
}

func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}
