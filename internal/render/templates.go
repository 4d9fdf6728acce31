package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrStructureMissing means a template set lacks a block the pages need.
var ErrStructureMissing = errors.New("page structure missing")

// Required lists the blocks every template set must define.
var Required = []string{"layout", "input", "result", "grid", "detail", "choose", "error"}

type Renderer struct {
	tmpl *template.Template
}

// New parses the built-in templates.
func New() (*Renderer, error) {
	return NewFromFS(templateFS, "templates/*.tmpl")
}

// NewFromFS parses a template set and checks it defines every Required block.
func NewFromFS(fsys fs.FS, pattern string) (*Renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	var missing []string
	for _, name := range Required {
		if t.Lookup(name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrStructureMissing, strings.Join(missing, ", "))
	}
	return &Renderer{tmpl: t}, nil
}

// Template exposes the set for gin's SetHTMLTemplate.
func (r *Renderer) Template() *template.Template { return r.tmpl }

func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

var funcs = template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
}
