package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/plateful/backend/config"
)

// ImageService stores recipe images. Write requests carry images as base64
// data URIs; the decoded bytes go to S3 and the recipe keeps the public URL.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// IsDataURI reports whether the payload is an inline base64 image rather than
// an already-resolved URL.
func IsDataURI(payload string) bool {
	return strings.HasPrefix(payload, "data:image/")
}

// UploadBase64 decodes a "data:image/...;base64," payload, uploads it to S3
// and returns the public URL.
func (s *ImageService) UploadBase64(ctx context.Context, payload string) (string, error) {
	contentType, data, err := decodeDataURI(payload)
	if err != nil {
		return "", err
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)

	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded recipe image to S3: %s", publicURL)
	return publicURL, nil
}

func decodeDataURI(payload string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, fmt.Errorf("expected base64 encoding")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return contentType, data, nil
}
