package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "blogcms/internal/errors"
)

// ContextUserIDKey is the echo context key holding the authenticated user id.
const ContextUserIDKey = "userID"

// Envelope is the standard success response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// fail converts a domain error into an echo HTTP error carrying an
// ErrorResponse. The original error is kept as the internal cause for logging.
func fail(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// badRequest reports a body or query that could not be decoded.
func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid request",
		Code:  string(apperrors.CodeValidation),
	}).SetInternal(err)
}

// bindAndValidate decodes the request into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return fail(err)
	}
	return nil
}

// userID returns the authenticated user id set by the auth middleware.
func userID(c echo.Context) string {
	id, _ := c.Get(ContextUserIDKey).(string)
	return id
}

// optionalFile returns the uploaded file for field, or nil when the request is
// not multipart or carries no such file.
func optionalFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest(err)
	}
	return fh, nil
}
