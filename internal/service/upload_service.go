package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/storage"
	"socialhub/internal/validation"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultUploadFolder is used when the client does not name a folder.
const DefaultUploadFolder = "posts"

// Errors returned by SniffImage.
var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrCorruptImage     = errors.New("image does not decode as its sniffed type")
)

var publicIDPattern = regexp.MustCompile(`^[a-zA-Z0-9/_-]+\.(png|jpg|jpeg|gif|webp)$`)

type UploadService struct {
	op
	store    storage.ObjectStore
	maxBytes int64
	maxFiles int
}

func NewUploadService(store storage.ObjectStore, maxBytes int64, maxFiles int, timeout time.Duration) *UploadService {
	return &UploadService{
		op:       newOp("UploadService", timeout),
		store:    store,
		maxBytes: maxBytes,
		maxFiles: maxFiles,
	}
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Filename string
	Content  []byte
}

// Upload validates every file before storing any of them. If a store call
// fails the files already stored are removed again.
func (s *UploadService) Upload(ctx context.Context, files []UploadFile, folder string) (_ []storage.Object, err error) {
	ctx, done := s.start(ctx, "Upload")
	defer done(&err)

	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		folder = DefaultUploadFolder
	}
	if err := validation.ValidateFolder(folder); err != nil {
		return nil, err
	}
	if strings.Contains(folder, "//") {
		return nil, models.NewValidationError("Invalid folder").WithExtra("folder", folder)
	}

	if len(files) == 0 {
		return nil, models.NewValidationError("No files uploaded")
	}
	if len(files) > s.maxFiles {
		return nil, models.NewValidationError(fmt.Sprintf("Too many files (max %d)", s.maxFiles))
	}

	kinds := make([]storage.ImageKind, len(files))
	for i, f := range files {
		if len(f.Content) == 0 {
			return nil, models.NewValidationError("Empty file").WithExtra("file", f.Filename)
		}
		if int64(len(f.Content)) > s.maxBytes {
			return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes>>20)).
				WithExtra("file", f.Filename)
		}
		kind, err := SniffImage(f.Content)
		if errors.Is(err, ErrUnsupportedImage) {
			return nil, models.NewValidationError("Invalid image type").WithExtra("file", f.Filename)
		}
		if err != nil {
			return nil, models.NewValidationError("Invalid image file").WithExtra("file", f.Filename)
		}
		kinds[i] = kind
	}

	stored := make([]storage.Object, 0, len(files))
	for i, f := range files {
		obj, err := s.store.Store(ctx, f.Content, folder, kinds[i])
		if err != nil {
			s.rollback(ctx, stored)
			return nil, models.NewInternalError(err)
		}
		observability.UploadsTotal.WithLabelValues(kinds[i].ContentType()).Inc()
		stored = append(stored, obj)
	}
	return stored, nil
}

func (s *UploadService) rollback(ctx context.Context, objects []storage.Object) {
	for _, obj := range objects {
		if _, err := s.store.Remove(context.WithoutCancel(ctx), obj.ID); err != nil {
			slog.WarnContext(ctx, "failed to remove partial upload",
				slog.String("public_id", obj.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Delete removes a previously uploaded object and reports whether it existed.
func (s *UploadService) Delete(ctx context.Context, publicID string) (_ bool, err error) {
	ctx, done := s.start(ctx, "Delete")
	defer done(&err)

	publicID = strings.Trim(publicID, "/")
	if !publicIDPattern.MatchString(publicID) || strings.Contains(publicID, "..") {
		return false, models.NewValidationError("Invalid publicId").WithExtra("publicId", publicID)
	}
	removed, err := s.store.Remove(ctx, publicID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return removed, nil
}

// SniffImage identifies the image format from content alone. The sniffed
// MIME type and the decoder must agree.
func SniffImage(content []byte) (storage.ImageKind, error) {
	var kind storage.ImageKind
	switch http.DetectContentType(content) {
	case "image/png":
		kind = storage.KindPNG
	case "image/jpeg":
		kind = storage.KindJPEG
	case "image/gif":
		kind = storage.KindGIF
	case "image/webp":
		kind = storage.KindWebP
	default:
		return "", ErrUnsupportedImage
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || storage.ImageKind(format) != kind {
		return "", ErrCorruptImage
	}
	return kind, nil
}
