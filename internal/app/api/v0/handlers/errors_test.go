package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adralidus/lgl-portal/internal/app/api/v0/model"
	"github.com/adralidus/lgl-portal/internal/domain"
)

func TestParseServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound},
		{"no permission", fmt.Errorf("gate: %w", domain.ErrNoPermission), http.StatusForbidden},
		{"duplicate", fmt.Errorf("save: %w", domain.ErrDuplicateEntry), http.StatusConflict},
		{"invalid data", fmt.Errorf("check: %w", domain.ErrInvalidData), http.StatusBadRequest},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, e := ParseServiceError(tt.err)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.want, e.Code)
			assert.Equal(t, tt.err.Error(), e.Message)
		})
	}
}

func TestRespondErrorWritesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()

	respondError(rec, fmt.Errorf("user not available: %w", domain.ErrNotFound))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body model.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Contains(t, body.Message, "user not available")
}
