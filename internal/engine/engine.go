// Package engine hosts folio's "njk" template language on top of pongo2,
// a Jinja/Django style engine close enough to Nunjucks for site templates.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Name is the engine identifier used in template format configuration.
const Name = "njk"

// SafeHTML marks filter output that must not be auto-escaped.
type SafeHTML string

// FilterFunc is a template filter. param is nil when the filter is called
// without an argument.
type FilterFunc func(in any, param any) (any, error)

// Option configures an Engine before construction.
type Option func(*config)

type config struct {
	includesDir string
	includesFS  fs.FS
	globals     map[string]any
}

// WithIncludesDir loads named templates ({% include %}, {% extends %} and
// layouts) from dir. A missing directory is not an error.
func WithIncludesDir(dir string) Option {
	return func(cfg *config) {
		cfg.includesDir = strings.TrimSpace(dir)
	}
}

// WithIncludesFS loads named templates from an fs.FS.
func WithIncludesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.includesFS = files
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders templates with a pongo2 template set.
type Engine struct {
	set *pongo2.TemplateSet
}

// New constructs an Engine using the provided options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	files := cfg.includesFS
	if files == nil {
		if cfg.includesDir == "" {
			return nil, errors.New("engine: need an includes directory or fs.FS")
		}
		files = os.DirFS(cfg.includesDir)
	}

	e := &Engine{
		set: pongo2.NewSet("folio", pongo2.NewFSLoader(files)),
	}
	e.set.Globals = make(pongo2.Context, len(cfg.globals))
	e.set.Globals.Update(cfg.globals)
	return e, nil
}

// RenderString renders src as a template. name identifies the template in
// error messages.
func (e *Engine) RenderString(name, src string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("engine: engine is nil")
	}

	tmpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("engine: parse %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("engine: execute %q: %w", name, err)
	}
	return buf.String(), nil
}

// RegisterFilter makes fn callable from templates as name. pongo2 keeps
// filters in a process-wide registry, so registering an existing name
// replaces it.
func (e *Engine) RegisterFilter(name string, fn FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("engine: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil && !param.IsNil() {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		if safe, ok := result.(SafeHTML); ok {
			return pongo2.AsSafeValue(string(safe)), nil
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}
