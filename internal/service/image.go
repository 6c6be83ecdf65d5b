package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// MaxImageBytes caps a decoded recipe image
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageStore persists recipe images and returns the URL to store on the recipe
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// S3API is the subset of the S3 client used for images
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore uploads images to a bucket
type S3ImageStore struct {
	client     S3API
	bucketName string
	publicURL  func(key string) string
	baseURL    string
}

// NewS3ImageStore creates an image store backed by the configured bucket
func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	store := NewS3ImageStoreWithClient(cfg.Client, cfg.BucketName, cfg.PublicBaseURL)
	store.publicURL = cfg.PublicURL
	return store
}

// NewS3ImageStoreWithClient creates an image store on an explicit client
func NewS3ImageStoreWithClient(client S3API, bucketName, publicBaseURL string) *S3ImageStore {
	base := strings.TrimRight(publicBaseURL, "/")
	return &S3ImageStore{
		client:     client,
		bucketName: bucketName,
		baseURL:    base,
		publicURL: func(key string) string {
			return base + "/" + strings.TrimLeft(key, "/")
		},
	}
}

func (s *S3ImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.publicURL(key)
	logging.Ctx(ctx).Debug().Str("url", url).Msg("uploaded recipe image")
	return url, nil
}

// Delete removes an image previously stored by Put. URLs outside the bucket are ignored.
func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(strings.TrimPrefix(url, prefix)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// InlineImageStore keeps images as data URIs on the recipe row. Used when no
// bucket is configured.
type InlineImageStore struct{}

func (InlineImageStore) Put(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (InlineImageStore) Delete(context.Context, string) error { return nil }

// DecodeDataURI parses "data:image/<type>;base64,<payload>"
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, &ValidationError{Field: "image", Message: "Image must be a base64 data URI"}
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, &ValidationError{Field: "image", Message: "Image must be a base64 data URI"}
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, &ValidationError{Field: "image", Message: "Image must be base64 encoded"}
	}
	contentType = strings.ToLower(contentType)
	if _, known := imageExtensions[contentType]; !known {
		return "", nil, &ValidationError{Field: "image", Message: "Unsupported image type"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, &ValidationError{Field: "image", Message: "Image is not valid base64"}
	}
	if len(data) == 0 {
		return "", nil, &ValidationError{Field: "image", Message: "Image is empty"}
	}
	if len(data) > MaxImageBytes {
		return "", nil, &ValidationError{Field: "image", Message: "Image is too large"}
	}
	return contentType, data, nil
}

// isRemoteImage reports whether the value already points at a stored image
func isRemoteImage(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// imageKeyPrefix is the bucket folder holding one author's recipe images
func imageKeyPrefix(ownerID uuid.UUID) string {
	return "recipes/" + ownerID.String() + "/"
}

// ownsImage reports whether url points into the owner's image folder
func ownsImage(url string, ownerID uuid.UUID) bool {
	return isRemoteImage(url) && strings.Contains(url, "/"+imageKeyPrefix(ownerID))
}

// storeImage uploads a data URI into the owner's folder. A URL is only
// accepted when it is the recipe's current image.
func storeImage(ctx context.Context, store ImageStore, ownerID uuid.UUID, value, current string) (string, error) {
	if isRemoteImage(value) {
		if value == current {
			return value, nil
		}
		return "", &ValidationError{Field: "image", Message: "Upload the image as a base64 data URI."}
	}
	contentType, data, err := DecodeDataURI(value)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s%s.%s", imageKeyPrefix(ownerID), uuid.New(), imageExtensions[contentType])
	return store.Put(ctx, key, contentType, data)
}
