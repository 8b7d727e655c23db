// Package storage persists uploaded media in an object store.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"socialhub/internal/config"

	"github.com/google/uuid"
)

// ImageKind is a sniffed image format.
type ImageKind string

const (
	KindPNG  ImageKind = "png"
	KindJPEG ImageKind = "jpeg"
	KindGIF  ImageKind = "gif"
	KindWebP ImageKind = "webp"
)

// Ext returns the file extension used for stored objects.
func (k ImageKind) Ext() string {
	if k == KindJPEG {
		return "jpg"
	}
	return string(k)
}

// ContentType returns the MIME type of the format.
func (k ImageKind) ContentType() string {
	return "image/" + string(k)
}

// Object is a stored file addressed by ID and reachable at URL.
type Object struct {
	URL string `json:"url"`
	ID  string `json:"publicId"`
}

// ObjectStore stores and removes uploaded files.
type ObjectStore interface {
	Store(ctx context.Context, data []byte, folder string, kind ImageKind) (Object, error)
	Remove(ctx context.Context, objectID string) (bool, error)
}

// NewObjectID returns a fresh "folder/<uuid>.<ext>" key.
func NewObjectID(folder string, kind ImageKind) string {
	folder = strings.Trim(folder, "/")
	return path.Join(folder, uuid.NewString()+"."+kind.Ext())
}

func publicURL(base, objectID string) string {
	return strings.TrimRight(base, "/") + "/" + objectID
}

// New builds the store selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicBaseURL)
	case "minio":
		store, err := NewMinioStore(MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %q: %w", cfg.MinioBucket, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
