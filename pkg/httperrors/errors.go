package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/multipart_lite/internal/models"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// Status сопоставляет ошибку домена с HTTP-статусом.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrIncomplete):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptyUpload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, multipart.ErrNoRequestContentType),
		errors.Is(err, multipart.ErrNotMultipart):
		return http.StatusUnsupportedMediaType
	case multipart.IsDecodeError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
