package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MeHandler exposes the identity of the current browser session as JSON.
type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

type meResponse struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Me returns the decoded claims of the session's access token.
//
// @Summary      Current user
// @Tags         session
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func (h *MeHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	claims, ok := sess.User()
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	role, err := claims.ParsedRole()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}

	resp := meResponse{UserID: claims.UserID, Email: claims.Email, Role: string(role)}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		resp.ExpiresAt = &exp
	}
	return c.JSON(http.StatusOK, resp)
}
