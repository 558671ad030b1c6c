package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
	"github.com/flocknet/flock-backend/pkg/storage"
)

// MediaService uploads message and post media to S3-compatible
// storage. Only the returned URL ever lands in the database.
type MediaService struct {
	s3           *storage.S3Client
	maxImageSize int64
	maxVideoSize int64
}

// NewMediaService creates a new MediaService
func NewMediaService(s3Client *storage.S3Client) *MediaService {
	return &MediaService{
		s3:           s3Client,
		maxImageSize: 10 * 1024 * 1024,
		maxVideoSize: 100 * 1024 * 1024,
	}
}

// MediaUploadResult represents the result of an upload operation
type MediaUploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	CDNURL      string `json:"cdn_url,omitempty"`
	MediaType   string `json:"media_type"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

var extsByKind = map[string][]string{
	domain.MediaImage: {".jpg", ".jpeg", ".png", ".webp"},
	domain.MediaGif:   {".gif"},
	domain.MediaVideo: {".mp4", ".webm", ".mov"},
}

// Upload stores one media file under the declared kind. The kind is
// part of the message payload later, so it is validated here against
// the actual file extension and sniffed content type.
func (s *MediaService) Upload(ctx context.Context, userID, kind string, file *multipart.FileHeader) (*MediaUploadResult, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", common.ErrTransient)
	}
	allowed, ok := extsByKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown media kind %q", common.ErrValidation, kind)
	}

	maxSize := s.maxImageSize
	if kind == domain.MediaVideo {
		maxSize = s.maxVideoSize
	}
	if file.Size > maxSize {
		return nil, fmt.Errorf("%w: file too large (max %dMB)", common.ErrValidation, maxSize/(1024*1024))
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if !containsExt(allowed, ext) {
		return nil, fmt.Errorf("%w: unsupported %s format %s", common.ErrValidation, kind, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Sniff the real content type from the first 512 bytes
	head := make([]byte, 512)
	n, readErr := src.Read(head)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return nil, fmt.Errorf("failed to read file header: %w", readErr)
	}
	contentType := http.DetectContentType(head[:n])
	if !matchesKind(kind, contentType) {
		return nil, fmt.Errorf("%w: content does not match declared kind %s", common.ErrValidation, kind)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to reset file reader: %w", err)
	}

	key := storage.GenerateKey(kind+"s", sanitizeFilename(file.Filename, ext))

	result, err := s.s3.Upload(ctx, key, src, contentType, file.Size)
	if err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Str("key", result.Key).
		Str("user_id", userID).
		Str("media_type", kind).
		Int64("size", file.Size).
		Msg("media uploaded")

	return &MediaUploadResult{
		Key:         result.Key,
		URL:         result.URL,
		CDNURL:      result.CDNURL,
		MediaType:   kind,
		ContentType: contentType,
		Size:        file.Size,
	}, nil
}

// Delete removes a file from storage
func (s *MediaService) Delete(ctx context.Context, key string) error {
	if s.s3 == nil {
		return fmt.Errorf("%w: media storage is not configured", common.ErrTransient)
	}
	return s.s3.Delete(ctx, key)
}

func containsExt(allowed []string, ext string) bool {
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}

func matchesKind(kind, contentType string) bool {
	switch kind {
	case domain.MediaImage:
		return strings.HasPrefix(contentType, "image/") && contentType != "image/gif"
	case domain.MediaGif:
		return contentType == "image/gif"
	case domain.MediaVideo:
		// Browsers sometimes ship webm/mov as application/octet-stream
		return strings.HasPrefix(contentType, "video/") || contentType == "application/octet-stream"
	}
	return false
}

func sanitizeFilename(original, ext string) string {
	base := strings.TrimSuffix(path.Base(original), path.Ext(original))
	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	s := result.String()
	if s == "" {
		s = "file"
	}
	return s + ext
}
