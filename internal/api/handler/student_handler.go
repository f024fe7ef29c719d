package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/ports"
)

// StudentHandler serves the read-only course list of the signed-in student.
type StudentHandler struct {
	api ports.StudentAPI
	log zerolog.Logger
}

func NewStudentHandler(api ports.StudentAPI, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{api: api, log: log.With().Str("component", "student_handler").Logger()}
}

type studentView struct {
	Loaded  bool
	Courses []domain.StudentCourse
}

func (h *StudentHandler) Courses(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	data, err := h.api.Data(c.Request().Context(), sess)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		h.log.Error().Err(err).Msg("load student data")
		return c.Render(http.StatusOK, "student", newView(c, "My Courses", studentView{}))
	}
	return c.Render(http.StatusOK, "student", newView(c, "My Courses", studentView{Loaded: true, Courses: data.Courses}))
}
