package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ftcscout/scout-backend/internal/domain"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidPassword) {
		RespondWithError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}

	code := domain.MapErrorToCode(err)
	switch code {
	case domain.CodeValidation:
		RespondWithError(w, r, http.StatusBadRequest, string(code), err.Error())
	case domain.CodeConflict, domain.CodeConflictRetry:
		RespondWithError(w, r, http.StatusConflict, string(code), err.Error())
	case domain.CodePermissionDenied:
		RespondWithError(w, r, http.StatusForbidden, string(code), err.Error())
	case domain.CodeNotFound:
		RespondWithError(w, r, http.StatusNotFound, string(code), err.Error())
	default:
		RespondWithError(w, r, http.StatusInternalServerError, string(domain.CodeStorage), "internal storage error")
	}
}
