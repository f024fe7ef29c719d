package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/school-portal/internal/api/middleware"
	"github.com/campusdesk/school-portal/internal/core/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"login", "admin", "teacher", "student", "error"}

// Renderer renders the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

var funcs = template.FuncMap{
	"mark": formatMark,
	"join": strings.Join,
}

// NewRenderer parses every page once at startup.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if r.pages[name], err = clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout.html", data)
}

// view is the data every page template receives.
type view struct {
	Title string
	User  *session.Claims
	Data  any
}

func newView(c echo.Context, title string, data any) view {
	return view{Title: title, User: middleware.ClaimsFrom(c), Data: data}
}

type errorView struct {
	Code    int
	Message string
}

// RenderError renders the HTML error page.
func RenderError(c echo.Context, code int, msg string) error {
	return c.Render(code, "error", newView(c, http.StatusText(code), errorView{Code: code, Message: msg}))
}
