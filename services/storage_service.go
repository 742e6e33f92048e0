package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"campus-hazard-server/config"
)

// ImageUploader stores a hazard image and returns its public URL.
// Handlers depend on this interface; tests swap in a stub.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, originalFilename string) (string, error)
}

// CloudinaryStorage uploads hazard images to Cloudinary
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage builds a storage client from the loaded config
func NewCloudinaryStorage() (*CloudinaryStorage, error) {
	cfg := config.AppConfig.Storage
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary is not configured: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName)
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStorage{cld: cld, folder: cfg.Folder}, nil
}

// UploadImage uploads the file under a freshly generated unique name that
// keeps the original extension, and returns the secure public URL.
func (s *CloudinaryStorage) UploadImage(ctx context.Context, file io.Reader, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	publicID := uuid.NewString() + ext

	overwrite := false
	uniqueFilename := false
	up, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		Overwrite:      &overwrite,
		UniqueFilename: &uniqueFilename,
		ResourceType:   "image",
	})
	if err != nil {
		return "", err
	}

	return up.SecureURL, nil
}

// ValidateImageFile checks mimetype by extension and size (<= 5MB)
func ValidateImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 5*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}
