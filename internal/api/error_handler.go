package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/handler"
	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for JSON routes.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends browsers back to /login when the backend session cannot be refreshed.
//   - Maps known errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Answers /api routes with {"error": "<message>"} and pages with the error template.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")

		if errors.Is(err, domain.ErrSessionExpired) && !isAPI {
			log.Info().Str("path", c.Request().URL.Path).Msg("session expired, redirecting to login")
			_ = c.Redirect(http.StatusSeeOther, middleware.LoginPath)
			return
		}

		code, msg := resolveError(err, log, c)
		if isAPI || c.Request().Method == http.MethodHead {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if rerr := handler.RenderError(c, code, msg); rerr != nil {
			log.Error().Err(rerr).Msg("render error page")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrRequestFailed):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend request failed")
		return http.StatusBadGateway, "backend request failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
