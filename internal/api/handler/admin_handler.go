package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/ports"
	"github.com/campusdesk/school-portal/internal/core/session"
)

const adminRoot = "/admin"

// AdminHandler serves the admin console: user and course tables, their
// create/edit/delete dialogs and the course assignment dialog.
type AdminHandler struct {
	api ports.AdminAPI
	log zerolog.Logger
}

func NewAdminHandler(api ports.AdminAPI, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{api: api, log: log.With().Str("component", "admin_handler").Logger()}
}

// --- Forms ---

type userForm struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Email     string `form:"email"`
	Role      string `form:"role"`
}

func (f userForm) input() domain.UserInput {
	return domain.UserInput{Email: f.Email, FirstName: f.FirstName, LastName: f.LastName, Role: domain.Role(f.Role)}
}

type courseForm struct {
	Name string `form:"name"`
}

type assignForm struct {
	StudentID string `form:"studentId"`
	TeacherID string `form:"teacherId"`
	CourseID  string `form:"courseId"`
}

// --- View ---

type userDialog struct {
	Target domain.FormTarget
	Action string
	Input  domain.UserInput
}

type courseDialog struct {
	Target domain.FormTarget
	Action string
	Input  domain.CourseInput
}

type assignDialog struct {
	Input    domain.AssignmentInput
	Students []domain.User
	Teachers []domain.User
	Courses  []domain.Course
}

type confirmDialog struct {
	Message string
	Action  string
}

type adminView struct {
	Users        []domain.User
	Courses      []domain.Course
	Roles        []domain.Role
	UserDialog   *userDialog
	CourseDialog *courseDialog
	AssignDialog *assignDialog
	Confirm      *confirmDialog
}

func newUserDialog(target domain.FormTarget, in domain.UserInput) *userDialog {
	action := adminRoot + "/users"
	if target.IsEditing() {
		action += "/" + target.ID()
	}
	return &userDialog{Target: target, Action: action, Input: in}
}

func newCourseDialog(target domain.FormTarget, in domain.CourseInput) *courseDialog {
	action := adminRoot + "/courses"
	if target.IsEditing() {
		action += "/" + target.ID()
	}
	return &courseDialog{Target: target, Action: action, Input: in}
}

// load fetches users and courses concurrently and waits for both. Both lists
// stay empty when either call fails; only an expired session is returned to
// the caller. A failing call does not cancel its sibling.
func (h *AdminHandler) load(ctx context.Context, sess *session.Session) (*adminView, error) {
	v := &adminView{Roles: domain.Roles}

	var users []domain.User
	var courses []domain.Course
	var usersErr, coursesErr error
	var g errgroup.Group
	g.Go(func() error {
		users, usersErr = h.api.ListUsers(ctx, sess)
		return usersErr
	})
	g.Go(func() error {
		courses, coursesErr = h.api.ListCourses(ctx, sess)
		return coursesErr
	})
	err := g.Wait()
	for _, e := range []error{usersErr, coursesErr} {
		if errors.Is(e, domain.ErrSessionExpired) {
			err = e
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, err
		}
		h.log.Error().Err(err).Msg("load admin data")
		return v, nil
	}

	v.Users, v.Courses = users, courses
	return v, nil
}

func (h *AdminHandler) show(c echo.Context, status int, open func(v *adminView) error) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	v, err := h.load(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if open != nil {
		if err := open(v); err != nil {
			return err
		}
	}
	return c.Render(status, "admin", newView(c, "Admin", v))
}

// mutate runs fn against the backend. On success it redirects to the console;
// on failure it logs and re-renders the console with the dialog still open.
func (h *AdminHandler) mutate(c echo.Context, op string, fn func(ctx context.Context, sess *session.Session) error, reopen func(v *adminView)) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := fn(c.Request().Context(), sess); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		h.log.Error().Err(err).Str("op", op).Msg("admin mutation failed")
		return h.show(c, http.StatusOK, func(v *adminView) error {
			reopen(v)
			return nil
		})
	}
	return c.Redirect(http.StatusSeeOther, adminRoot)
}

// Dashboard renders both tables with no dialog open.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	return h.show(c, http.StatusOK, nil)
}

// --- Users ---

func (h *AdminHandler) NewUser(c echo.Context) error {
	return h.show(c, http.StatusOK, func(v *adminView) error {
		v.UserDialog = newUserDialog(domain.Creating(), domain.UserInput{})
		return nil
	})
}

func (h *AdminHandler) EditUser(c echo.Context) error {
	id := c.Param("id")
	return h.show(c, http.StatusOK, func(v *adminView) error {
		u, ok := findUser(v.Users, id)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		v.UserDialog = newUserDialog(domain.Editing(id), domain.UserInput{
			Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role,
		})
		return nil
	})
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var form userForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := form.input()
	return h.mutate(c, "create_user",
		func(ctx context.Context, sess *session.Session) error { return h.api.CreateUser(ctx, sess, in) },
		func(v *adminView) { v.UserDialog = newUserDialog(domain.Creating(), in) },
	)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id := c.Param("id")
	var form userForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := form.input()
	return h.mutate(c, "update_user",
		func(ctx context.Context, sess *session.Session) error { return h.api.UpdateUser(ctx, sess, id, in) },
		func(v *adminView) { v.UserDialog = newUserDialog(domain.Editing(id), in) },
	)
}

func (h *AdminHandler) ConfirmDeleteUser(c echo.Context) error {
	id := c.Param("id")
	return h.show(c, http.StatusOK, func(v *adminView) error {
		v.Confirm = deleteUserPrompt(id)
		return nil
	})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	return h.mutate(c, "delete_user",
		func(ctx context.Context, sess *session.Session) error { return h.api.DeleteUser(ctx, sess, id) },
		func(v *adminView) { v.Confirm = deleteUserPrompt(id) },
	)
}

func deleteUserPrompt(id string) *confirmDialog {
	return &confirmDialog{
		Message: "Are you sure you want to delete this user?",
		Action:  adminRoot + "/users/" + id + "/delete",
	}
}

// --- Courses ---

func (h *AdminHandler) NewCourse(c echo.Context) error {
	return h.show(c, http.StatusOK, func(v *adminView) error {
		v.CourseDialog = newCourseDialog(domain.Creating(), domain.CourseInput{})
		return nil
	})
}

func (h *AdminHandler) EditCourse(c echo.Context) error {
	id := c.Param("id")
	return h.show(c, http.StatusOK, func(v *adminView) error {
		course, ok := findCourse(v.Courses, id)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		v.CourseDialog = newCourseDialog(domain.Editing(id), domain.CourseInput{Name: course.Name})
		return nil
	})
}

func (h *AdminHandler) CreateCourse(c echo.Context) error {
	var form courseForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := domain.CourseInput{Name: form.Name}
	return h.mutate(c, "create_course",
		func(ctx context.Context, sess *session.Session) error { return h.api.CreateCourse(ctx, sess, in) },
		func(v *adminView) { v.CourseDialog = newCourseDialog(domain.Creating(), in) },
	)
}

func (h *AdminHandler) UpdateCourse(c echo.Context) error {
	id := c.Param("id")
	var form courseForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := domain.CourseInput{Name: form.Name}
	return h.mutate(c, "update_course",
		func(ctx context.Context, sess *session.Session) error { return h.api.UpdateCourse(ctx, sess, id, in) },
		func(v *adminView) { v.CourseDialog = newCourseDialog(domain.Editing(id), in) },
	)
}

func (h *AdminHandler) ConfirmDeleteCourse(c echo.Context) error {
	id := c.Param("id")
	return h.show(c, http.StatusOK, func(v *adminView) error {
		v.Confirm = deleteCoursePrompt(id)
		return nil
	})
}

func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	id := c.Param("id")
	return h.mutate(c, "delete_course",
		func(ctx context.Context, sess *session.Session) error { return h.api.DeleteCourse(ctx, sess, id) },
		func(v *adminView) { v.Confirm = deleteCoursePrompt(id) },
	)
}

func deleteCoursePrompt(id string) *confirmDialog {
	return &confirmDialog{
		Message: "Are you sure you want to delete this course?",
		Action:  adminRoot + "/courses/" + id + "/delete",
	}
}

// --- Assignment ---

func (h *AdminHandler) AssignPage(c echo.Context) error {
	return h.show(c, http.StatusOK, func(v *adminView) error {
		v.AssignDialog = newAssignDialog(v, domain.AssignmentInput{})
		return nil
	})
}

func (h *AdminHandler) Assign(c echo.Context) error {
	var form assignForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := domain.AssignmentInput{StudentID: form.StudentID, TeacherID: form.TeacherID, CourseID: form.CourseID}
	return h.mutate(c, "assign_course",
		func(ctx context.Context, sess *session.Session) error { return h.api.AssignCourse(ctx, sess, in) },
		func(v *adminView) { v.AssignDialog = newAssignDialog(v, in) },
	)
}

func newAssignDialog(v *adminView, in domain.AssignmentInput) *assignDialog {
	d := &assignDialog{Input: in, Courses: v.Courses}
	for _, u := range v.Users {
		role, _ := domain.ParseRole(string(u.Role))
		switch role {
		case domain.RoleStudent:
			d.Students = append(d.Students, u)
		case domain.RoleTeacher:
			d.Teachers = append(d.Teachers, u)
		}
	}
	return d
}

func findUser(users []domain.User, id string) (domain.User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

func findCourse(courses []domain.Course, id string) (domain.Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Course{}, false
}
