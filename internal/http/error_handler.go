package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ats-portal/internal/http/handler"
	"ats-portal/internal/rbac"
	"ats-portal/internal/view"
	apperrors "ats-portal/pkg/errors"
	"ats-portal/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const apiPrefix = "/api/"

// NewHTTPErrorHandler maps errors returned by handlers and middleware to
// status codes. API paths and JSON clients get a JSON body, browsers get the
// error page. Internal errors are logged and never exposed.
func NewHTTPErrorHandler(pages *handler.PageHandler, log *zap.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := mapError(err)

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = "unknown"
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.String("error", logger.SanitizeLogMessage(err.Error())),
		}
		if code >= http.StatusInternalServerError {
			log.Error("internal_server_error", fields...)
			message = "Internal server error"
		} else {
			log.Warn("client_error", fields...)
		}

		var respErr error
		switch {
		case c.Request().Method == http.MethodHead:
			respErr = c.NoContent(code)
		case wantsJSON(c.Request()):
			respErr = c.JSON(code, map[string]string{
				"error":      message,
				"request_id": requestID,
			})
		case code == http.StatusNotFound:
			respErr = pages.Render(c, code, view.PageNotFound, "Page not found", nil)
		default:
			respErr = pages.Render(c, code, view.PageError, http.StatusText(code), message)
		}
		if respErr != nil {
			log.Error("error response failed", zap.String("request_id", requestID), zap.Error(respErr))
		}
	}
}

func mapError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code := http.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = http.StatusNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		code, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		code, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperrors.ErrExpired):
		code, message = http.StatusUnauthorized, "Session expired"
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, rbac.ErrDenied):
		code, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrCSRF):
		code, message = http.StatusForbidden, "Invalid or missing CSRF token"
	case errors.Is(err, apperrors.ErrBadRequest):
		code, message = http.StatusBadRequest, "Bad request"
	case errors.Is(err, apperrors.ErrValidation):
		code, message = http.StatusBadRequest, "Validation error"
	case errors.Is(err, rbac.ErrUnknownRole), errors.Is(err, rbac.ErrUnknownAction),
		errors.Is(err, rbac.ErrUnknownSubject), errors.Is(err, rbac.ErrMalformedPermission):
		code, message = http.StatusBadRequest, "Unknown role or permission"
	case errors.Is(err, apperrors.ErrRateLimited):
		code, message = http.StatusTooManyRequests, "Rate limit exceeded"
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && code < http.StatusInternalServerError {
		message = appErr.Message
	}
	return code, message
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		return true
	}
	accept := r.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
