package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// Write executes the page template of the view's variant.
func (v View) Write(w io.Writer) error {
	name := string(v.Variant)
	if name == "" {
		name = string(Dashboard)
	}
	if err := pages.ExecuteTemplate(w, name, v); err != nil {
		return fmt.Errorf("failed to write %s page: %w", name, err)
	}
	return nil
}
