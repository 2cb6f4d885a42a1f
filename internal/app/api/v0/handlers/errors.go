package handlers

import (
	"errors"
	"net/http"

	"github.com/adralidus/lgl-portal/internal/app/api/core/respond"
	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/domain"
)

// respondError writes the JSON representation of a service error.
func respondError(w http.ResponseWriter, err error) {
	code, e := ParseServiceError(err)
	respond.JSON(w, code, e)
}

// ParseServiceError maps domain errors to HTTP status codes.
func ParseServiceError(err error) (int, model.Error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNoPermission):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateEntry):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	}

	return code, model.Error{Code: code, Message: err.Error()}
}
