package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the S3-compatible endpoint settings.
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// MinioStore keeps objects in a MinIO or S3 bucket.
type MinioStore struct {
	cfg    MinioConfig
	client *minio.Client
}

// NewMinioStore creates the client. It does not contact the server.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if cfg.PublicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicBaseURL = scheme + "://" + endpoint + "/" + cfg.Bucket
	}
	return &MinioStore{cfg: cfg, client: cl}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *MinioStore) Store(ctx context.Context, data []byte, folder string, kind ImageKind) (Object, error) {
	id := NewObjectID(folder, kind)
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, id,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: kind.ContentType()})
	if err != nil {
		return Object{}, err
	}
	return Object{ID: id, URL: publicURL(s.cfg.PublicBaseURL, id)}, nil
}

// Remove deletes the object and reports whether it existed.
func (s *MinioStore) Remove(ctx context.Context, objectID string) (bool, error) {
	if _, err := s.client.StatObject(ctx, s.cfg.Bucket, objectID, minio.StatObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, objectID, minio.RemoveObjectOptions{}); err != nil {
		return false, err
	}
	return true, nil
}
