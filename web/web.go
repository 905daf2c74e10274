// Package web renders the dashboard pages from embedded templates and
// serves the static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageContext is the data every page template receives. Data carries the
// page-specific payload.
type PageContext struct {
	Title      string
	Lang       string
	Line       string
	Item       string
	Hostname   string
	UpdateTime string
	Date       string
	Shift      string
	T          map[string]string
	Data       any
}

// pages are the content templates, each composed over base.html.
var pages = []string{
	"homepage.html",
	"station_yield.html",
	"cell_record.html",
	"fail_detail.html",
	"day_yield.html",
	"pf_data.html",
	"sn_record.html",
	"portconfig.html",
	"keyname.html",
}

// Renderer holds the parsed template sets, one per page.
type Renderer struct {
	templates map[string]*template.Template
}

// zero2space blanks zero counts so untouched table cells render empty.
func zero2space(v any) string {
	s := fmt.Sprintf("%v", v)
	if s == "0" {
		return ""
	}
	return s
}

// NewRenderer parses all page templates. A malformed template is a
// startup-fatal condition.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"zero2space": zero2space,
	}
	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		t, err := template.New("base.html").Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render writes a page. The template executes into a buffer first so a
// render error never leaves a half-written response body.
func (r *Renderer) Render(w io.Writer, page string, ctx PageContext) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded css/js assets.
func StaticHandler() http.Handler {
	content, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(content))
}
