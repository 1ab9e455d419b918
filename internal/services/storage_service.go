package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/zeebo/blake3"
)

const schemaPrefix = "schemas"

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StorageService keeps uploaded schema images on local disk. Files are named
// by the BLAKE3 hash of their content, so re-uploading the same image
// yields the same URL.
type StorageService struct {
	dir     string
	baseURL string
	maxSize int
}

func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{
		dir:     cfg.UploadDir,
		baseURL: cfg.PublicBaseURL,
		maxSize: cfg.MaxUploadSize,
	}
}

// Dir is the root served under /uploads.
func (s *StorageService) Dir() string {
	return s.dir
}

// UploadSchemaImage stores data and returns its public URL. name is only
// used for logging.
func (s *StorageService) UploadSchemaImage(ctx context.Context, data []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if s.maxSize > 0 && len(data) > s.maxSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.maxSize)
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", fmt.Errorf("%w: only PNG, JPEG, GIF and WebP images are accepted", ErrInvalidInput)
	}

	sum := blake3.Sum256(data)
	fileName := hex.EncodeToString(sum[:]) + ext
	dir := filepath.Join(s.dir, schemaPrefix)
	target := filepath.Join(dir, fileName)

	if _, err := os.Stat(target); err == nil {
		return s.url(fileName), nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %w", ErrUpstream, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrUpstream, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: write upload: %w", ErrUpstream, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close upload: %w", ErrUpstream, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("%w: chmod upload: %w", ErrUpstream, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("%w: store upload: %w", ErrUpstream, err)
	}

	slog.Info("schema image stored", "action", "upload_schema", "file", fileName, "original_name", name, "size", len(data))
	return s.url(fileName), nil
}

func (s *StorageService) url(fileName string) string {
	return s.baseURL + "/uploads/" + schemaPrefix + "/" + fileName
}
