package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/ports"
	"github.com/campusdesk/school-portal/internal/core/session"
)

const teacherRoot = "/teacher"

// TeacherHandler serves the roster of the signed-in teacher and the mark dialog.
type TeacherHandler struct {
	api ports.TeacherAPI
	log zerolog.Logger
}

func NewTeacherHandler(api ports.TeacherAPI, log zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{api: api, log: log.With().Str("component", "teacher_handler").Logger()}
}

type markForm struct {
	CourseID string `form:"courseId"`
	Mark     string `form:"mark"`
}

type markDialog struct {
	Student  domain.StudentWithMarks
	Target   domain.FormTarget
	Action   string
	CourseID string
	Value    string
}

type teacherView struct {
	Students []domain.StudentWithMarks
	Dialog   *markDialog
}

func newMarkDialog(st domain.StudentWithMarks, target domain.FormTarget, courseID, value string) *markDialog {
	action := teacherRoot + "/students/" + st.ID + "/mark"
	if target.IsEditing() {
		action += "/" + target.ID()
	}
	return &markDialog{Student: st, Target: target, Action: action, CourseID: courseID, Value: value}
}

// roster loads the students of the signed-in teacher. A failed load is logged
// and leaves the table empty.
func (h *TeacherHandler) roster(ctx context.Context, sess *session.Session, teacherID string) ([]domain.StudentWithMarks, error) {
	students, err := h.api.Students(ctx, sess, teacherID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, err
		}
		h.log.Error().Err(err).Str("teacher_id", teacherID).Msg("load students")
		return nil, nil
	}
	return students, nil
}

func (h *TeacherHandler) show(c echo.Context, open func(v *teacherView, claims *session.Claims) error) error {
	sess, claims, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	students, err := h.roster(c.Request().Context(), sess, claims.UserID)
	if err != nil {
		return err
	}
	v := &teacherView{Students: students}
	if open != nil {
		if err := open(v, claims); err != nil {
			return err
		}
	}
	return c.Render(http.StatusOK, "teacher", newView(c, "My Students", v))
}

// Roster renders the student table with no dialog open.
func (h *TeacherHandler) Roster(c echo.Context) error {
	return h.show(c, nil)
}

// EditMark opens the mark dialog for one student: an update when this teacher
// already marked the student, a new mark otherwise.
func (h *TeacherHandler) EditMark(c echo.Context) error {
	studentID := c.Param("id")
	return h.show(c, func(v *teacherView, claims *session.Claims) error {
		st, ok := findStudent(v.Students, studentID)
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		if m, ok := st.MarkBy(claims.UserID); ok {
			v.Dialog = newMarkDialog(st, domain.Editing(m.ID), m.CourseID, formatMark(m.Mark))
		} else {
			v.Dialog = newMarkDialog(st, domain.Creating(), "", "")
		}
		return nil
	})
}

// CreateMark records a new mark by the signed-in teacher. Values are sent
// unclamped; the backend owns the range.
func (h *TeacherHandler) CreateMark(c echo.Context) error {
	return h.saveMark(c, domain.Creating())
}

// UpdateMark changes the value of an existing mark.
func (h *TeacherHandler) UpdateMark(c echo.Context) error {
	return h.saveMark(c, domain.Editing(c.Param("markId")))
}

func (h *TeacherHandler) saveMark(c echo.Context, target domain.FormTarget) error {
	sess, claims, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	studentID := c.Param("id")

	var form markForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	reopen := func(v *teacherView, _ *session.Claims) error {
		st, ok := findStudent(v.Students, studentID)
		if !ok {
			st = domain.StudentWithMarks{User: domain.User{ID: studentID}}
		}
		v.Dialog = newMarkDialog(st, target, form.CourseID, form.Mark)
		return nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(form.Mark), 64)
	if err != nil {
		h.log.Warn().Err(err).Str("student_id", studentID).Str("mark", form.Mark).Msg("unparseable mark")
		return h.show(c, reopen)
	}

	ctx := c.Request().Context()
	if target.IsEditing() {
		err = h.api.UpdateMark(ctx, sess, target.ID(), domain.MarkUpdate{NewMarkValue: value})
	} else {
		err = h.api.CreateMark(ctx, sess, domain.MarkInput{
			StudentID: studentID,
			TeacherID: claims.UserID,
			CourseID:  form.CourseID,
			MarkValue: value,
		})
	}
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		h.log.Error().Err(err).Str("student_id", studentID).Msg("save mark")
		return h.show(c, reopen)
	}
	return c.Redirect(http.StatusSeeOther, teacherRoot)
}

func findStudent(students []domain.StudentWithMarks, id string) (domain.StudentWithMarks, bool) {
	for _, s := range students {
		if s.ID == id {
			return s, true
		}
	}
	return domain.StudentWithMarks{}, false
}

func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
