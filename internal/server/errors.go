package server

import (
	"errors"
	"fmt"
	"log/slog"

	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorHandler is the single place where errors become HTTP responses.
// Handlers and middleware only return errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, body := translate(err)

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	return c.Status(status).JSON(body)
}

func translate(err error) (int, models.ErrorResponse) {
	var (
		appErr  *models.AppError
		verrs   validation.Errors
		pgErr   *pgconn.PgError
		fiberEr *fiber.Error
	)

	switch {
	case errors.As(err, &appErr):
		status := appErr.StatusCode()
		if status >= fiber.StatusInternalServerError {
			return status, models.ErrorResponse{Message: "Internal Server Error"}
		}
		return status, models.ErrorResponse{Message: appErr.Message, Extra: appErr.Extra}

	case errors.As(err, &verrs):
		return fiber.StatusBadRequest, models.ErrorResponse{
			Message: "Validation error",
			Extra:   map[string]any{"errors": verrs},
		}

	case errors.As(err, &pgErr):
		if field, ok := repository.UniqueViolationField(err); ok {
			return fiber.StatusBadRequest, uniqueViolation(field)
		}
		if repository.IsConstraintViolation(err) {
			return fiber.StatusBadRequest, models.ErrorResponse{
				Message: "Database error",
				Extra:   map[string]any{"code": pgErr.Code},
			}
		}

	case repository.IsConstraintViolation(err):
		if field, ok := repository.UniqueViolationField(err); ok {
			return fiber.StatusBadRequest, uniqueViolation(field)
		}
		return fiber.StatusBadRequest, models.ErrorResponse{Message: "Database error"}

	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, models.ErrorResponse{Message: "Resource not found"}

	case errors.As(err, &fiberEr):
		return fiberEr.Code, models.ErrorResponse{Message: fiberEr.Message}
	}

	return fiber.StatusInternalServerError, models.ErrorResponse{Message: "Internal Server Error"}
}

func uniqueViolation(field string) models.ErrorResponse {
	return models.ErrorResponse{
		Message: fmt.Sprintf("Field '%s' is already in use", field),
		Extra:   map[string]any{"field": field},
	}
}
