package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "blogcms/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
		wantLogged bool
	}{
		{"domain not found", false, apperrors.NotFound("post not found"), http.StatusNotFound, "NOT_FOUND", "", false},
		{"internal shows detail in development", false, errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR", "db down", true},
		{"internal hides detail in production", true, errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR", "", true},
		{"echo error", false, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge, codePayloadTooLarge, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			e := echo.New()
			e.HTTPErrorHandler = ErrorHandler(logger, tt.production)
			e.GET("/boom", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var resp apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantDetail, resp.Detail)

			if tt.wantLogged {
				require.NotNil(t, hook.LastEntry())
				assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			} else {
				assert.Nil(t, hook.LastEntry())
			}
		})
	}
}

func TestCustomValidator_Messages(t *testing.T) {
	type nested struct {
		Title string `json:"metaTitle" validate:"max=3"`
	}
	type request struct {
		Name  string   `json:"name" validate:"required"`
		Color string   `json:"color" validate:"omitempty,hexcolor"`
		IDs   []string `json:"ids" validate:"dive,uuid"`
		SEO   nested   `json:"seo"`
		Limit int      `query:"limit" validate:"max=50"`
	}

	err := NewCustomValidator().Validate(&request{
		Color: "blue",
		IDs:   []string{"not-a-uuid"},
		SEO:   nested{Title: "too long"},
		Limit: 99,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)

	got := map[string]string{}
	for _, f := range appErr.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, map[string]string{
		"name":          "is required",
		"color":         "must be a hex color",
		"ids[0]":        "must be a valid id",
		"seo.metaTitle": "must be at most 3 characters",
		"limit":         "must be at most 50",
	}, got)

	assert.NoError(t, NewCustomValidator().Validate(&request{Name: "ok"}))
}
