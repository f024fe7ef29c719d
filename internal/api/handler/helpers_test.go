package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// stubAPI implements every backend port; unset functions fail the test.
type stubAPI struct {
	t *testing.T

	loginFn        func(email, password string) (*domain.AuthResponse, error)
	listUsersFn    func() ([]domain.User, error)
	createUserFn   func(in domain.UserInput) error
	updateUserFn   func(id string, in domain.UserInput) error
	deleteUserFn   func(id string) error
	listCoursesFn  func() ([]domain.Course, error)
	createCourseFn func(in domain.CourseInput) error
	updateCourseFn func(id string, in domain.CourseInput) error
	deleteCourseFn func(id string) error
	assignFn       func(in domain.AssignmentInput) error
	studentsFn     func(teacherID string) ([]domain.StudentWithMarks, error)
	createMarkFn   func(in domain.MarkInput) error
	updateMarkFn   func(id string, in domain.MarkUpdate) error
	dataFn         func() (*domain.StudentData, error)
}

func (s *stubAPI) unexpected(name string) {
	s.t.Helper()
	s.t.Fatalf("unexpected call to %s", name)
}

func (s *stubAPI) Login(_ context.Context, _ *session.Session, email, password string) (*domain.AuthResponse, error) {
	if s.loginFn == nil {
		s.unexpected("Login")
	}
	return s.loginFn(email, password)
}

func (s *stubAPI) Register(context.Context, *session.Session, domain.RegisterInput) (*domain.User, error) {
	s.unexpected("Register")
	return nil, nil
}

func (s *stubAPI) Refresh(context.Context, *session.Session) (string, error) {
	s.unexpected("Refresh")
	return "", nil
}

func (s *stubAPI) ListUsers(context.Context, *session.Session) ([]domain.User, error) {
	if s.listUsersFn == nil {
		return nil, nil
	}
	return s.listUsersFn()
}

func (s *stubAPI) CreateUser(_ context.Context, _ *session.Session, in domain.UserInput) error {
	if s.createUserFn == nil {
		s.unexpected("CreateUser")
	}
	return s.createUserFn(in)
}

func (s *stubAPI) UpdateUser(_ context.Context, _ *session.Session, id string, in domain.UserInput) error {
	if s.updateUserFn == nil {
		s.unexpected("UpdateUser")
	}
	return s.updateUserFn(id, in)
}

func (s *stubAPI) DeleteUser(_ context.Context, _ *session.Session, id string) error {
	if s.deleteUserFn == nil {
		s.unexpected("DeleteUser")
	}
	return s.deleteUserFn(id)
}

func (s *stubAPI) ListCourses(context.Context, *session.Session) ([]domain.Course, error) {
	if s.listCoursesFn == nil {
		return nil, nil
	}
	return s.listCoursesFn()
}

func (s *stubAPI) CreateCourse(_ context.Context, _ *session.Session, in domain.CourseInput) error {
	if s.createCourseFn == nil {
		s.unexpected("CreateCourse")
	}
	return s.createCourseFn(in)
}

func (s *stubAPI) UpdateCourse(_ context.Context, _ *session.Session, id string, in domain.CourseInput) error {
	if s.updateCourseFn == nil {
		s.unexpected("UpdateCourse")
	}
	return s.updateCourseFn(id, in)
}

func (s *stubAPI) DeleteCourse(_ context.Context, _ *session.Session, id string) error {
	if s.deleteCourseFn == nil {
		s.unexpected("DeleteCourse")
	}
	return s.deleteCourseFn(id)
}

func (s *stubAPI) AssignCourse(_ context.Context, _ *session.Session, in domain.AssignmentInput) error {
	if s.assignFn == nil {
		s.unexpected("AssignCourse")
	}
	return s.assignFn(in)
}

func (s *stubAPI) Students(_ context.Context, _ *session.Session, teacherID string) ([]domain.StudentWithMarks, error) {
	if s.studentsFn == nil {
		return nil, nil
	}
	return s.studentsFn(teacherID)
}

func (s *stubAPI) CreateMark(_ context.Context, _ *session.Session, in domain.MarkInput) error {
	if s.createMarkFn == nil {
		s.unexpected("CreateMark")
	}
	return s.createMarkFn(in)
}

func (s *stubAPI) UpdateMark(_ context.Context, _ *session.Session, id string, in domain.MarkUpdate) error {
	if s.updateMarkFn == nil {
		s.unexpected("UpdateMark")
	}
	return s.updateMarkFn(id, in)
}

func (s *stubAPI) Data(context.Context, *session.Session) (*domain.StudentData, error) {
	if s.dataFn == nil {
		s.unexpected("Data")
	}
	return s.dataFn()
}

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

func newSession(token string) *session.Session {
	return session.New("sid-1", session.State{Token: token}, session.NewDecoder(""), time.Now, zerolog.Nop())
}

func signToken(t *testing.T, userID, role string, exp time.Time) string {
	t.Helper()
	claims := session.Claims{
		UserID: userID,
		Email:  userID + "@school.test",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// newContext builds an echo context carrying sess and, when non-nil, the claims
// the guard would have accepted.
func newContext(e *echo.Echo, method, target string, form url.Values, sess *session.Session, claims *session.Claims) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionKey, sess)
	}
	if claims != nil {
		c.Set(middleware.ClaimsKey, claims)
	}
	return c, rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}
