package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
)

//go:embed templates/*.html
var embedded embed.FS

var ErrTemplateNotFound = errors.New("could not find template")

type Templates struct {
	t *template.Template
}

// New parses the embedded templates, or the html files in dir when dir is set.
func New(dir string) (*Templates, error) {
	var fsys fs.FS = embedded
	pattern := "templates/*.html"

	if dir != "" {
		fsys = os.DirFS(dir)
		pattern = "*.html"
	}

	t, err := template.New("").ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}

	return &Templates{t: t}, nil
}

func (t *Templates) Render(name string, data any) (string, error) {
	tmpl := t.t.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("%w with name %s", ErrTemplateNotFound, name)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("could not render %s: %w", name, err)
	}

	return buf.String(), nil
}
