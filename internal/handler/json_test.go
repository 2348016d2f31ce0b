package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/domain"
	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/handler"
)

func TestWriteReadError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.NotFoundf("Book not found with id: 1"), http.StatusNotFound},
		{"invalid input", domain.InvalidInputf("bad"), http.StatusBadRequest},
		{"conflict", domain.Conflictf("unexpected"), http.StatusInternalServerError},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.WriteReadError(w, httptest.NewRequest(http.MethodGet, "/books/1", nil), tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
