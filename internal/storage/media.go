// Package storage keeps uploaded cover images in a MinIO bucket and hands
// the rest of the system a plain URL.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const DefaultMaxUploadSizeMB = 10

// objectUploader is the slice of the MinIO client the store needs. Tests
// stub it; production passes *minio.Client.
type objectUploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MediaStore uploads validated cover images and builds their public URLs.
type MediaStore struct {
	client         objectUploader
	bucket         string
	baseURL        string
	maxUploadBytes int64
}

type UploadInput struct {
	UserID   uint
	Filename string
	Content  []byte
}

// NewMediaStore connects to MinIO and ensures the bucket exists. A nil
// store is a valid degraded mode; callers answer 503.
func NewMediaStore(ctx context.Context, cfg *config.Config) (*MediaStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.MinioUseSSL {
		scheme = "https"
	}

	return &MediaStore{
		client:         client,
		bucket:         cfg.MinioBucket,
		baseURL:        fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint),
		maxUploadBytes: DefaultMaxUploadSizeMB * 1024 * 1024,
	}, nil
}

// UploadCoverImage validates the upload and stores it under a content-hash
// key. Re-uploading identical bytes lands on the same object.
func (s *MediaStore) UploadCoverImage(ctx context.Context, in UploadInput) (string, error) {
	if in.UserID == 0 {
		return "", models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	// Confirm the payload really decodes as the claimed format, not just
	// that the magic bytes match.
	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if !isSupportedImageFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}

	key := fmt.Sprintf("covers/%s.%s", contentHash(in.UserID, in.Content), formatExtension(format))
	_, err = s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(in.Content), int64(len(in.Content)),
		minio.PutObjectOptions{ContentType: formatToMime(format)})
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("media upload: %w", err))
	}

	observability.MediaUploadBytes.Observe(float64(len(in.Content)))
	return s.ObjectURL(key), nil
}

// ObjectURL builds the public URL for a stored object key.
func (s *MediaStore) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isSupportedImageFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func formatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func formatExtension(format string) string {
	if f := strings.ToLower(strings.TrimSpace(format)); f == "jpeg" || f == "jpg" {
		return "jpg"
	}
	return strings.ToLower(strings.TrimSpace(format))
}

func contentHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
