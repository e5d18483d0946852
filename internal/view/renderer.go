package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	layoutName   = "layout"
	templateGlob = "templates/%s.html"
)

// Page template names.
const (
	PageLogin        = "login"
	PageUnauthorized = "unauthorized"
	PageNotFound     = "not_found"
	PageError        = "error"
	PageDashboard    = "dashboard"
	PageCandidates   = "candidates"
	PageJobs         = "jobs"
	PageWorkflow     = "workflow"
	PageReports      = "reports"
	PageUsers        = "users"
	PageRoles        = "roles"
	PageSettings     = "settings"
)

var pageNames = []string{
	PageLogin, PageUnauthorized, PageNotFound, PageError, PageDashboard, PageCandidates,
	PageJobs, PageWorkflow, PageReports, PageUsers, PageRoles, PageSettings,
}

var funcs = template.FuncMap{
	"title": func(s fmt.Stringer) string {
		words := strings.Split(s.String(), "_")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		return strings.Join(words, " ")
	},
}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout once and every page against a clone of it.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New(layoutName).Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("view: parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("view: clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, fmt.Sprintf(templateGlob, name)); err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, layoutName, data)
}
