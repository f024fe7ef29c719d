package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/campusdesk/school-portal/docs"
	"github.com/campusdesk/school-portal/internal/api/handler"
	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
	"github.com/campusdesk/school-portal/internal/infrastructure/backend"
	"github.com/campusdesk/school-portal/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	API      *backend.API
	Sessions *session.Manager
	Cookies  sessions.Store
	// Ready lists the dependencies checked by /health/ready, keyed by name.
	Ready map[string]handlers.Pinger
	Log   zerolog.Logger
}

// @title           School Portal
// @version         1.0
// @description     Server-rendered school management portal.
// @BasePath        /

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("school_portal"))
	e.Use(middleware.Session(d.Sessions, d.Cookies, d.Log.With().Str("component", "session").Logger()))
	e.Use(middleware.Guard(d.Log.With().Str("component", "guard").Logger()))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.API, d.Sessions, d.Log)
	adminHandler := handler.NewAdminHandler(d.API, d.Log)
	teacherHandler := handler.NewTeacherHandler(d.API, d.Log)
	studentHandler := handler.NewStudentHandler(d.API, d.Log)
	meHandler := handler.NewMeHandler()

	// --- Auth routes ---
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, middleware.LoginPath) })
	e.GET(middleware.LoginPath, authHandler.LoginPage)
	e.POST(middleware.LoginPath, authHandler.Login)
	e.POST("/logout", authHandler.Logout)

	// --- Consoles ---
	admin := e.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	admin.GET("", adminHandler.Dashboard)
	admin.GET("/users/new", adminHandler.NewUser)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users/:id/edit", adminHandler.EditUser)
	admin.POST("/users/:id", adminHandler.UpdateUser)
	admin.GET("/users/:id/delete", adminHandler.ConfirmDeleteUser)
	admin.POST("/users/:id/delete", adminHandler.DeleteUser)
	admin.GET("/courses/new", adminHandler.NewCourse)
	admin.POST("/courses", adminHandler.CreateCourse)
	admin.GET("/courses/:id/edit", adminHandler.EditCourse)
	admin.POST("/courses/:id", adminHandler.UpdateCourse)
	admin.GET("/courses/:id/delete", adminHandler.ConfirmDeleteCourse)
	admin.POST("/courses/:id/delete", adminHandler.DeleteCourse)
	admin.GET("/assign", adminHandler.AssignPage)
	admin.POST("/assign", adminHandler.Assign)

	teacher := e.Group("/teacher", middleware.RequireRole(domain.RoleTeacher))
	teacher.GET("", teacherHandler.Roster)
	teacher.GET("/students/:id/mark", teacherHandler.EditMark)
	teacher.POST("/students/:id/mark", teacherHandler.CreateMark)
	teacher.POST("/students/:id/mark/:markId", teacherHandler.UpdateMark)

	student := e.Group("/student", middleware.RequireRole(domain.RoleStudent))
	student.GET("", studentHandler.Courses)

	// --- JSON ---
	e.GET("/api/me", meHandler.Me)

	// --- Ops (no session, no guard) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return middleware.IsInfraPath(c.Request().URL.Path)
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
