package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestMeHandler_SignedIn(t *testing.T) {
	e := newEcho(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	sess := newSession(signToken(t, "u1", "teacher", exp))

	c, rec := newContext(e, http.MethodGet, "/api/me", nil, sess, nil)
	if err := NewMeHandler().Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.UserID != "u1" || resp.Role != "TEACHER" || resp.ExpiresAt == nil || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestMeHandler_Expired(t *testing.T) {
	e := newEcho(t)
	sess := newSession(signToken(t, "u1", "teacher", time.Now().Add(-time.Minute)))

	c, _ := newContext(e, http.MethodGet, "/api/me", nil, sess, nil)
	var he *echo.HTTPError
	if err := NewMeHandler().Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if _, ok := sess.Token(); ok {
		t.Fatalf("expired token should have been cleared")
	}
}
