// internal/services/media_service.go
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/utils"
)

// MediaService stores uploaded and generated media and hands back URLs.
// Snapshots never carry inline data, so anything a client sends as a data
// URI is stored here first.
type MediaService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

const dataURIPrefix = "data:"

func NewMediaService(cfg *config.Config) (*MediaService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local uploads directory for development
		return &MediaService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &MediaService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// Upload validates data against options and stores it. The content type
// is sniffed from the bytes, never taken from the caller.
func (s *MediaService) Upload(ctx context.Context, data []byte, options UploadOptions) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidMedia)
	}
	if options.MaxSize > 0 && int64(len(data)) > options.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrMediaTooLarge, len(data), options.MaxSize)
	}

	mt := mimetype.Detect(data)
	if len(options.AllowedTypes) > 0 && !allowedType(mt, options.AllowedTypes) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMedia, mt.String())
	}

	key := s.generateKey(data, mt.Extension(), options.Folder)
	contentType := strings.SplitN(mt.String(), ";", 2)[0]

	if s.s3Client != nil {
		return s.uploadToS3(ctx, data, key, contentType, options.IsPublic)
	}
	return s.uploadToLocal(data, key, contentType)
}

func allowedType(mt *mimetype.MIME, allowed []string) bool {
	for _, t := range allowed {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// UploadDataURI stores the payload of a base64 data URI.
func (s *MediaService) UploadDataURI(ctx context.Context, dataURI, category string) (*UploadResult, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, data, s.GetDefaultUploadOptions(category))
}

// Resolve turns a data URI into a stored media URL. Other values are
// returned unchanged.
func (s *MediaService) Resolve(ctx context.Context, value, category string) (string, error) {
	if !strings.HasPrefix(value, dataURIPrefix) {
		return value, nil
	}
	result, err := s.UploadDataURI(ctx, value, category)
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

func decodeDataURI(dataURI string) ([]byte, error) {
	if !strings.HasPrefix(dataURI, dataURIPrefix) {
		return nil, fmt.Errorf("%w: not a data URI", ErrInvalidMedia)
	}
	meta, payload, ok := strings.Cut(dataURI[len(dataURIPrefix):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: only base64 data URIs are accepted", ErrInvalidMedia)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	return data, nil
}

func (s *MediaService) uploadToS3(ctx context.Context, data []byte, key, contentType string, isPublic bool) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if isPublic {
		params.ACL = aws.String("public-read")
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *MediaService) uploadToLocal(data []byte, key, contentType string) (*UploadResult, error) {
	path := filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	return &UploadResult{
		URL:      strings.TrimRight(s.config.Media.LocalBaseURL, "/") + "/" + key,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *MediaService) Delete(ctx context.Context, key string) error {
	if s.s3Client == nil {
		err := os.Remove(filepath.Join(s.config.Media.LocalDir, filepath.FromSlash(key)))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete media file: %w", err)
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	logrus.WithField("key", key).Info("Media deleted")
	return nil
}

var (
	imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	videoTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
	audioTypes = []string{"audio/webm", "audio/ogg", "audio/mpeg", "audio/wav", "audio/mp4", "video/webm"}
)

func (s *MediaService) GetDefaultUploadOptions(category string) UploadOptions {
	switch category {
	case "avatars":
		return UploadOptions{
			Folder:       "avatars",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: imageTypes,
			IsPublic:     true,
		}
	case "products", "decks":
		return UploadOptions{
			Folder:       category,
			MaxSize:      50 * 1024 * 1024, // 50MB
			AllowedTypes: append(append([]string{}, imageTypes...), videoTypes...),
			IsPublic:     true,
		}
	case "audio":
		return UploadOptions{
			Folder:       "audio",
			MaxSize:      10 * 1024 * 1024, // 10MB
			AllowedTypes: audioTypes,
			IsPublic:     true,
		}
	case "generated":
		return UploadOptions{
			Folder:       "generated",
			MaxSize:      50 * 1024 * 1024, // 50MB
			AllowedTypes: append(append([]string{}, imageTypes...), videoTypes...),
			IsPublic:     true,
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: imageTypes,
			IsPublic:     false,
		}
	}
}

// generateKey names content by date and hash, so the same bytes map to the
// same key.
func (s *MediaService) generateKey(data []byte, ext, folder string) string {
	filename := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102"), utils.HashBytes(data)[:16], ext)
	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

func (s *MediaService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
