// Package templates renders the packaged configuration file templates.
package templates

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Loader resolves templates by name from a single search path, the snap's
// templates directory.
type Loader struct {
	searchPath string
}

func NewLoader(searchPath string) *Loader {
	return &Loader{searchPath: searchPath}
}

// Get parses the named template. Parse failures, including a missing template
// file, are surfaced as the loader's own errors.
func (l *Loader) Get(name string) (*Template, error) {
	t, err := template.New(name).
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		ParseFiles(filepath.Join(l.searchPath, name))
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", name, err)
	}
	return &Template{tmpl: t}, nil
}

// Template is a parsed template bound to its name.
type Template struct {
	tmpl *template.Template
}

// Render executes the template against ctx. Undefined context keys fail the
// render rather than producing partial output.
func (t *Template) Render(ctx any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}
