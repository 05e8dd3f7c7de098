// Package web renders the portal's HTML pages and carries the one-shot flash
// messages between redirects. Templates and static assets are embedded so the
// binary deploys as a single file.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS is the embedded /static file tree, rooted at its contents.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the envelope every template receives.
type Page struct {
	Title string
	Flash *Flash
	User  *session.Session
	Data  interface{}
}

var pageNames = []string{
	"login.html",
	"editor.html",
	"history.html",
	"view.html",
	"admin.html",
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"has": func(list []string, v string) bool {
		for _, item := range list {
			if item == v {
				return true
			}
		}
		return false
	},
	// jsonify is used in attribute context; contextual escaping handles the
	// quoting there, so it returns a plain string.
	"jsonify": func(v interface{}) (string, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	},
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout so pages can override the layout's blocks independently.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all embedded pages. It fails fast at startup rather
// than at first render.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// NewPage assembles the template envelope for the current request, consuming
// any pending flash. user may be nil on public pages.
func NewPage(c echo.Context, title string, user *session.Session, data interface{}) *Page {
	return &Page{
		Title: title,
		Flash: PopFlash(c.Response(), c.Request()),
		User:  user,
		Data:  data,
	}
}
