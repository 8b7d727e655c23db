package server

import (
	"fmt"
	"io"
	"mime/multipart"

	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

const uploadField = "images"

// UploadImages handles POST /api/uploads?folder=
// @Summary Upload 1-4 images
// @Description Types are sniffed from the file contents: png, jpeg, gif and webp.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Image files"
// @Param folder query string false "Target folder, default posts"
// @Success 201 {object} object{urls=[]storage.Object}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /uploads [post]
func (s *Server) UploadImages(c *fiber.Ctx) error {
	if s.uploadService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Uploads are not configured")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.NewValidationError("Invalid multipart form")
	}

	headers := form.File[uploadField]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		content, err := readUpload(fh, s.config.MaxUploadBytes())
		if err != nil {
			return err
		}
		files = append(files, service.UploadFile{Filename: fh.Filename, Content: content})
	}

	objects, err := s.uploadService.Upload(c.UserContext(), files, c.Query("folder"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"urls": objects})
}

// readUpload reads at most limit+1 bytes so the service can reject
// oversized files without buffering them whole.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("open upload %q: %w", fh.Filename, err))
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read upload %q: %w", fh.Filename, err))
	}
	return content, nil
}

// DeleteUpload handles DELETE /api/uploads/*. The wildcard is the publicId
// returned by UploadImages and may contain slashes.
// @Summary Delete an uploaded image
// @Tags uploads
// @Produce json
// @Param publicId path string true "Public ID returned by the upload"
// @Success 200 {object} object{deleted=bool}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /uploads/{publicId} [delete]
func (s *Server) DeleteUpload(c *fiber.Ctx) error {
	if s.uploadService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Uploads are not configured")
	}
	removed, err := s.uploadService.Delete(c.UserContext(), c.Params("*"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": removed})
}
