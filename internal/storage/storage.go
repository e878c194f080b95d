// ===============================
// internal/storage/storage.go - Media storage
// ===============================

package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Uploader stores media objects and returns a URL the apps can play or show
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// ContentType guesses the MIME type from the object extension
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
