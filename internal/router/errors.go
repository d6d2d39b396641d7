package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "blogcms/internal/errors"
)

// Codes for failures raised by echo itself rather than the domain.
const (
	codeRateLimited     = "RATE_LIMITED"
	codePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	codeHTTP            = "HTTP_ERROR"
)

// ErrorHandler renders every error as an errors.ErrorResponse. Server errors
// are logged; their cause is echoed back as detail outside production.
func ErrorHandler(log logrus.FieldLogger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			mapped := apperrors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
		}

		resp := responseFor(he)
		resp.Success = false

		if he.Code >= http.StatusInternalServerError {
			cause := he.Internal
			if cause == nil {
				cause = err
			}
			log.WithError(cause).WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Error("request failed")
			if !production {
				resp.Detail = cause.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, resp)
		}
		if err != nil {
			log.WithError(err).Warn("failed to write error response")
		}
	}
}

func responseFor(he *echo.HTTPError) apperrors.ErrorResponse {
	if resp, ok := he.Message.(apperrors.ErrorResponse); ok {
		return resp
	}

	msg, ok := he.Message.(string)
	if !ok || msg == "" {
		msg = http.StatusText(he.Code)
	}
	switch he.Code {
	case http.StatusNotFound:
		return apperrors.ErrorResponse{Error: "Route not found", Code: string(apperrors.CodeNotFound)}
	case http.StatusUnauthorized:
		return apperrors.ErrorResponse{Error: msg, Code: string(apperrors.CodeInvalidToken)}
	case http.StatusTooManyRequests:
		return apperrors.ErrorResponse{Error: msg, Code: codeRateLimited}
	case http.StatusRequestEntityTooLarge:
		return apperrors.ErrorResponse{Error: msg, Code: codePayloadTooLarge}
	case http.StatusInternalServerError:
		return apperrors.ErrorResponse{Error: "internal server error", Code: string(apperrors.CodeInternal)}
	}
	return apperrors.ErrorResponse{Error: msg, Code: codeHTTP}
}
