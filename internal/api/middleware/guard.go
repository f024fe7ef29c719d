package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/metrics"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// Outcome is the terminal result of a guard evaluation.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectRoleRoot
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	case RedirectRoleRoot:
		return "role_root"
	}
	return "unknown"
}

// Decision is what the guard does with one navigation.
type Decision struct {
	Outcome  Outcome
	Location string
	Claims   *session.Claims
}

// Evaluate decides whether path may be rendered for sess. Expired tokens are
// cleared and treated like a missing one.
func Evaluate(path string, sess *session.Session) Decision {
	if path == LoginPath {
		return Decision{Outcome: Allow}
	}
	if sess == nil {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}
	if _, ok := sess.Token(); !ok {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}

	claims, err := sess.Claims()
	if err != nil {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}
	role, err := claims.ParsedRole()
	if err != nil {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}

	if strings.EqualFold(leadingSegment(path), role.Segment()) {
		return Decision{Outcome: Allow, Claims: claims}
	}
	return Decision{Outcome: RedirectRoleRoot, Location: role.Root(), Claims: claims}
}

// Guard confines every page to the signed-in user's role namespace.
// It must run after Session.
func Guard(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !isGuarded(path) {
				return next(c)
			}

			d := Evaluate(path, SessionFrom(c))
			metrics.GuardDecisionsTotal.WithLabelValues(d.Outcome.String()).Inc()

			if d.Outcome != Allow {
				log.Debug().Str("path", path).Str("outcome", d.Outcome.String()).Str("location", d.Location).Msg("guard redirect")
				return c.Redirect(http.StatusSeeOther, d.Location)
			}
			if d.Claims != nil {
				c.Set(ClaimsKey, d.Claims)
			}
			return next(c)
		}
	}
}
