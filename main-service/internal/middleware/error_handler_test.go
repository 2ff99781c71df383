package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestErrorHandler_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", fmt.Errorf("%w: event with id=1 was not found", service.ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: bad date", service.ErrValidation), http.StatusBadRequest},
		{"conflict", fmt.Errorf("%w: limit reached", service.ErrConflict), http.StatusConflict},
		{"duplicate key", fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey), http.StatusConflict},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid userId"), http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/events/1", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(tt.wantCode), body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	rec := httptest.NewRecorder()

	ErrorHandler(errors.New("pq: password authentication failed"), e.NewContext(req, rec))

	assert.NotContains(t, rec.Body.String(), "password")
}
