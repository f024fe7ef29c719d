package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/ports"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// API is the typed catalog of backend calls.
type API struct {
	client *Client
}

var (
	_ ports.AuthAPI    = (*API)(nil)
	_ ports.AdminAPI   = (*API)(nil)
	_ ports.TeacherAPI = (*API)(nil)
	_ ports.StudentAPI = (*API)(nil)
)

func NewAPI(client *Client) *API {
	return &API{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- auth ---

func (a *API) Login(ctx context.Context, sess *session.Session, email, password string) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := a.client.Request(ctx, sess, "/auth/login", Options{
		Method: http.MethodPost,
		Body:   loginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Register(ctx context.Context, sess *session.Session, in domain.RegisterInput) (*domain.User, error) {
	var out domain.User
	if err := a.client.Request(ctx, sess, "/auth/register", Options{Method: http.MethodPost, Body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Refresh(ctx context.Context, sess *session.Session) (string, error) {
	return a.client.Refresh(ctx, sess)
}

// --- admin ---

func (a *API) ListUsers(ctx context.Context, sess *session.Session) ([]domain.User, error) {
	var out []domain.User
	if err := a.client.Request(ctx, sess, "/admin/users", Options{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) CreateUser(ctx context.Context, sess *session.Session, in domain.UserInput) error {
	return a.client.Request(ctx, sess, "/admin/user", Options{Method: http.MethodPost, Body: in}, nil)
}

func (a *API) UpdateUser(ctx context.Context, sess *session.Session, id string, in domain.UserInput) error {
	return a.client.Request(ctx, sess, "/admin/user/"+url.PathEscape(id), Options{Method: http.MethodPut, Body: in}, nil)
}

func (a *API) DeleteUser(ctx context.Context, sess *session.Session, id string) error {
	return a.client.Request(ctx, sess, "/admin/user/"+url.PathEscape(id), Options{Method: http.MethodDelete}, nil)
}

func (a *API) ListCourses(ctx context.Context, sess *session.Session) ([]domain.Course, error) {
	var out []domain.Course
	if err := a.client.Request(ctx, sess, "/admin/courses", Options{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) CreateCourse(ctx context.Context, sess *session.Session, in domain.CourseInput) error {
	return a.client.Request(ctx, sess, "/admin/course", Options{Method: http.MethodPost, Body: in}, nil)
}

func (a *API) UpdateCourse(ctx context.Context, sess *session.Session, id string, in domain.CourseInput) error {
	return a.client.Request(ctx, sess, "/admin/course/"+url.PathEscape(id), Options{Method: http.MethodPut, Body: in}, nil)
}

func (a *API) DeleteCourse(ctx context.Context, sess *session.Session, id string) error {
	return a.client.Request(ctx, sess, "/admin/course/"+url.PathEscape(id), Options{Method: http.MethodDelete}, nil)
}

func (a *API) AssignCourse(ctx context.Context, sess *session.Session, in domain.AssignmentInput) error {
	return a.client.Request(ctx, sess, "/admin/assign", Options{Method: http.MethodPost, Body: in}, nil)
}

// --- teacher ---

func (a *API) Students(ctx context.Context, sess *session.Session, teacherID string) ([]domain.StudentWithMarks, error) {
	var out []domain.StudentWithMarks
	if err := a.client.Request(ctx, sess, "/teacher/"+url.PathEscape(teacherID)+"/students", Options{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) CreateMark(ctx context.Context, sess *session.Session, in domain.MarkInput) error {
	return a.client.Request(ctx, sess, "/teacher/mark", Options{Method: http.MethodPost, Body: in}, nil)
}

func (a *API) UpdateMark(ctx context.Context, sess *session.Session, id string, in domain.MarkUpdate) error {
	return a.client.Request(ctx, sess, "/teacher/mark/"+url.PathEscape(id), Options{Method: http.MethodPut, Body: in}, nil)
}

// --- student ---

func (a *API) Data(ctx context.Context, sess *session.Session) (*domain.StudentData, error) {
	var out domain.StudentData
	if err := a.client.Request(ctx, sess, "/student/data", Options{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
