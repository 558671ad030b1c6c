package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestMediaServiceWithoutStorage(t *testing.T) {
	svc := NewMediaService(nil)
	file := &multipart.FileHeader{Filename: "photo.png", Size: 128}

	// Upload and Delete must fail cleanly when storage is disabled,
	// never reach the nil client.
	_, err := svc.Upload(context.Background(), "user-1", domain.MediaImage, file)
	assert.ErrorIs(t, err, common.ErrTransient)

	err = svc.Delete(context.Background(), "images/photo.png")
	assert.ErrorIs(t, err, common.ErrTransient)
}

func TestMediaUploadValidation(t *testing.T) {
	svc := NewMediaService(&storage.S3Client{})

	t.Run("unknown kind", func(t *testing.T) {
		file := &multipart.FileHeader{Filename: "clip.mp3", Size: 128}
		_, err := svc.Upload(context.Background(), "user-1", "audio", file)
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("oversized image", func(t *testing.T) {
		file := &multipart.FileHeader{Filename: "big.png", Size: 11 * 1024 * 1024}
		_, err := svc.Upload(context.Background(), "user-1", domain.MediaImage, file)
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("extension does not match kind", func(t *testing.T) {
		file := &multipart.FileHeader{Filename: "anim.gif", Size: 128}
		_, err := svc.Upload(context.Background(), "user-1", domain.MediaImage, file)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}
