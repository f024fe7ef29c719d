package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/core/session"
)

const (
	cookieName = "school_portal"
	sidKey     = "sid"
)

// Echo context keys set by Session and Guard.
const (
	SessionKey = "session"
	ClaimsKey  = "claims"
)

// CookieOptions configures the browser cookie that carries the session id.
type CookieOptions struct {
	Secret string
	Secure bool
	MaxAge int
}

// NewCookieStore returns the signed cookie store holding session ids.
func NewCookieStore(opts CookieOptions) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session attaches the browser's *session.Session to the echo context and
// persists it once the handler chain returns.
func Session(mgr *session.Manager, cookies sessions.Store, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsInfraPath(c.Request().URL.Path) {
				return next(c)
			}

			r := c.Request()
			cs, err := cookies.Get(r, cookieName)
			if err != nil {
				// Tampered or rotated cookie: gorilla hands back a fresh session.
				log.Debug().Err(err).Msg("discarding unreadable session cookie")
			}

			sid, _ := cs.Values[sidKey].(string)
			if sid == "" {
				sid = mgr.NewID()
				cs.Values[sidKey] = sid
				if err := cs.Save(r, c.Response()); err != nil {
					return fmt.Errorf("write session cookie: %w", err)
				}
			}

			sess, err := mgr.Load(r.Context(), sid)
			if err != nil {
				return err
			}
			c.Set(SessionKey, sess)

			chainErr := next(c)

			if err := mgr.Save(context.WithoutCancel(r.Context()), sess); err != nil {
				log.Error().Err(err).Str("session_id", sid).Msg("persist session")
			}
			return chainErr
		}
	}
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(SessionKey).(*session.Session)
	return sess
}

// ClaimsFrom returns the claims the guard accepted for this request, or nil.
func ClaimsFrom(c echo.Context) *session.Claims {
	claims, _ := c.Get(ClaimsKey).(*session.Claims)
	return claims
}
