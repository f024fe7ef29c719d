package ports

import (
	"context"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// AuthAPI covers the backend's /auth endpoints.
type AuthAPI interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (*domain.AuthResponse, error)
	Register(ctx context.Context, sess *session.Session, in domain.RegisterInput) (*domain.User, error)
	Refresh(ctx context.Context, sess *session.Session) (string, error)
}

// AdminAPI covers the backend's /admin endpoints.
type AdminAPI interface {
	ListUsers(ctx context.Context, sess *session.Session) ([]domain.User, error)
	CreateUser(ctx context.Context, sess *session.Session, in domain.UserInput) error
	UpdateUser(ctx context.Context, sess *session.Session, id string, in domain.UserInput) error
	DeleteUser(ctx context.Context, sess *session.Session, id string) error

	ListCourses(ctx context.Context, sess *session.Session) ([]domain.Course, error)
	CreateCourse(ctx context.Context, sess *session.Session, in domain.CourseInput) error
	UpdateCourse(ctx context.Context, sess *session.Session, id string, in domain.CourseInput) error
	DeleteCourse(ctx context.Context, sess *session.Session, id string) error

	AssignCourse(ctx context.Context, sess *session.Session, in domain.AssignmentInput) error
}

// TeacherAPI covers the backend's /teacher endpoints.
type TeacherAPI interface {
	Students(ctx context.Context, sess *session.Session, teacherID string) ([]domain.StudentWithMarks, error)
	CreateMark(ctx context.Context, sess *session.Session, in domain.MarkInput) error
	UpdateMark(ctx context.Context, sess *session.Session, id string, in domain.MarkUpdate) error
}

// StudentAPI covers the backend's /student endpoints.
type StudentAPI interface {
	Data(ctx context.Context, sess *session.Session) (*domain.StudentData, error)
}
