package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// ctxSession returns the browser session attached by the Session middleware.
// A missing session means the route was mounted outside the middleware chain.
func ctxSession(c echo.Context) (*session.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session middleware not installed")
	}
	return sess, nil
}

// ctxIdentity returns the session together with the claims the guard accepted.
// Console handlers need both: the session to call the backend and the claims
// to know who is signed in.
func ctxIdentity(c echo.Context) (*session.Session, *session.Claims, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, nil, err
	}
	claims := middleware.ClaimsFrom(c)
	if claims == nil || claims.UserID == "" {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sess, claims, nil
}
