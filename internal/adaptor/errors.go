package adaptor

import (
	"errors"
	"net/http"

	"movie-catalog/internal/data/repository"
	"movie-catalog/internal/form"
	"movie-catalog/internal/upload"
	"movie-catalog/internal/usecase"

	"go.uber.org/zap"
)

// errorStatus maps a service or form error to an HTTP status and the
// message that is safe to show.
func errorStatus(err error) (int, string) {
	var vErr *form.ValidationError
	var upErr *upload.UploadError

	switch {
	case errors.Is(err, form.ErrNoFile),
		errors.Is(err, form.ErrTooManyFiles),
		errors.Is(err, form.ErrUnknownField):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, form.ErrNotImage):
		return http.StatusUnsupportedMediaType, form.MsgImageOnly

	case errors.Is(err, form.ErrUploadInProgress),
		errors.Is(err, form.ErrBusy):
		return http.StatusConflict, err.Error()

	case errors.Is(err, form.ErrDraftNotFound),
		errors.Is(err, usecase.ErrMovieNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, form.ErrDraftClosed):
		return http.StatusGone, err.Error()

	case errors.As(err, &upErr):
		return http.StatusBadGateway, form.MsgUploadFailed

	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, "Validation failed"

	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidID),
		errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, usecase.ErrEmailTaken):
		return http.StatusConflict, err.Error()

	case errors.Is(err, usecase.ErrInvalidLogin):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, usecase.ErrAccountDisabled):
		return http.StatusForbidden, err.Error()

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func logServiceError(log *zap.Logger, err error, operation string, code int) {
	if code >= http.StatusInternalServerError {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		return
	}
	log.Warn(operation+" failed", zap.Error(err), zap.Int("status", code))
}
