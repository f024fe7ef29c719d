package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/ports"
	"github.com/campusdesk/school-portal/internal/core/session"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgInvalidToken       = "Invalid token data."
	msgUnauthorizedRole   = "Unauthorized role."
)

// SessionDestroyer ends a browser session. *session.Manager satisfies it.
type SessionDestroyer interface {
	Destroy(ctx context.Context, s *session.Session) error
}

// AuthHandler serves the sign-in screen and sign-out.
type AuthHandler struct {
	api      ports.AuthAPI
	sessions SessionDestroyer
	log      zerolog.Logger
}

func NewAuthHandler(api ports.AuthAPI, sessions SessionDestroyer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{api: api, sessions: sessions, log: log.With().Str("component", "auth_handler").Logger()}
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type loginView struct {
	Email string
	Error string
}

// LoginPage renders the empty sign-in form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", newView(c, "Sign In", loginView{}))
}

// Login exchanges the submitted credentials for an access token and sends the
// user to the console of the role the token carries.
func (h *AuthHandler) Login(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.fail(c, http.StatusBadRequest, form.Email, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return h.fail(c, http.StatusUnprocessableEntity, form.Email, err.Error())
	}

	resp, err := h.api.Login(c.Request().Context(), sess, form.Email, form.Password)
	if err != nil {
		h.log.Warn().Err(err).Str("email", form.Email).Msg("login rejected")
		return h.fail(c, http.StatusUnauthorized, form.Email, msgInvalidCredentials)
	}
	sess.SetToken(resp.AccessToken)

	claims, err := sess.Claims()
	if err != nil {
		return h.fail(c, http.StatusUnauthorized, form.Email, msgInvalidToken)
	}
	role, err := claims.ParsedRole()
	if err != nil {
		h.log.Warn().Str("role", claims.Role).Str("user_id", claims.UserID).Msg("token carries unknown role")
		return h.fail(c, http.StatusForbidden, form.Email, msgUnauthorizedRole)
	}

	h.log.Info().Str("user_id", claims.UserID).Str("role", string(role)).Msg("signed in")
	return c.Redirect(http.StatusSeeOther, role.Root())
}

// Logout forgets the session server-side and returns to the sign-in screen.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Destroy(c.Request().Context(), sess); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		h.log.Error().Err(err).Str("session_id", sess.ID()).Msg("destroy session")
	}
	return c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

func (h *AuthHandler) fail(c echo.Context, status int, email, msg string) error {
	return c.Render(status, "login", newView(c, "Sign In", loginView{Email: email, Error: msg}))
}
