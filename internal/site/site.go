// Package site is the configuration object plugins and the project
// configuration register filters, transforms and passthrough copies on.
// The build pipeline reads it back.
package site

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/logfields"
	"github.com/Bitlatte/folio/internal/model"
)

// Plugin is a named bundle of filters, transforms and extensions.
type Plugin interface {
	Name() string
	Register(c *Config) error
}

// Transform rewrites the rendered output of a page before it is written.
type Transform func(page *model.Page, content string) (string, error)

// AfterBuildFunc runs once after every page has been written.
type AfterBuildFunc func(outputDir string) error

type namedTransform struct {
	name string
	fn   Transform
}

type namedHook struct {
	name string
	fn   AfterBuildFunc
}

// Config collects everything registered for a build.
type Config struct {
	Options config.Config

	logger      *slog.Logger
	filters     map[string]engine.FilterFunc
	transforms  []namedTransform
	afterBuild  []namedHook
	passthrough []string
	markdown    []goldmark.Extender
	globals     map[string]any
	plugins     map[string]struct{}
}

// New returns an empty Config for opts. A nil logger uses slog.Default.
func New(opts config.Config, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}
	return &Config{
		Options: opts,
		logger:  logger,
		filters: make(map[string]engine.FilterFunc),
		globals: make(map[string]any),
		plugins: make(map[string]struct{}),
	}
}

// AddFilter registers a template filter. A later registration under the
// same name replaces the earlier one.
func (c *Config) AddFilter(name string, fn engine.FilterFunc) {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return
	}
	if _, ok := c.filters[name]; ok {
		c.logger.Debug("Replacing filter", slog.String("filter", name))
	}
	c.filters[name] = fn
}

// AddPlugin registers p unless a plugin with the same name already is.
func (c *Config) AddPlugin(p Plugin) error {
	if p == nil {
		return errors.New("site: nil plugin")
	}
	name := p.Name()
	if _, ok := c.plugins[name]; ok {
		c.logger.Debug("Plugin already registered", logfields.Plugin(name))
		return nil
	}
	if err := p.Register(c); err != nil {
		return fmt.Errorf("register plugin %q: %w", name, err)
	}
	c.plugins[name] = struct{}{}
	c.logger.Debug("Registered plugin", logfields.Plugin(name))
	return nil
}

// AddPassthroughCopy copies paths into the output unchanged. Paths are
// relative to the working directory.
func (c *Config) AddPassthroughCopy(paths ...string) {
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			c.passthrough = append(c.passthrough, p)
		}
	}
}

// AddTransform appends a transform. Transforms run in registration order.
func (c *Config) AddTransform(name string, fn Transform) {
	if fn == nil {
		return
	}
	c.transforms = append(c.transforms, namedTransform{name: name, fn: fn})
}

// AddMarkdownExtension adds a goldmark extension to the Markdown renderer.
func (c *Config) AddMarkdownExtension(ext goldmark.Extender) {
	if ext != nil {
		c.markdown = append(c.markdown, ext)
	}
}

// AddGlobalData exposes value to every template under key.
func (c *Config) AddGlobalData(key string, value any) {
	if key = strings.TrimSpace(key); key != "" {
		c.globals[key] = value
	}
}

// AddAfterBuild registers a hook that runs after all pages are written.
func (c *Config) AddAfterBuild(name string, fn AfterBuildFunc) {
	if fn != nil {
		c.afterBuild = append(c.afterBuild, namedHook{name: name, fn: fn})
	}
}

// Filters returns the registered filters by name.
func (c *Config) Filters() map[string]engine.FilterFunc {
	return c.filters
}

// PassthroughCopies returns the registered passthrough paths in order,
// without duplicates.
func (c *Config) PassthroughCopies() []string {
	seen := make(map[string]struct{}, len(c.passthrough))
	out := make([]string, 0, len(c.passthrough))
	for _, p := range c.passthrough {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// MarkdownExtensions returns the goldmark extensions in registration order.
func (c *Config) MarkdownExtensions() []goldmark.Extender {
	return c.markdown
}

// GlobalData returns the data registered with AddGlobalData.
func (c *Config) GlobalData() map[string]any {
	return c.globals
}

// ApplyTransforms runs every transform over content.
func (c *Config) ApplyTransforms(page *model.Page, content string) (string, error) {
	for _, t := range c.transforms {
		out, err := t.fn(page, content)
		if err != nil {
			return "", fmt.Errorf("transform %q: %w", t.name, err)
		}
		content = out
	}
	return content, nil
}

// RunAfterBuild runs every after-build hook, stopping at the first error.
func (c *Config) RunAfterBuild(outputDir string) error {
	for _, h := range c.afterBuild {
		if err := h.fn(outputDir); err != nil {
			return fmt.Errorf("after build %q: %w", h.name, err)
		}
	}
	return nil
}

// Logger is the logger plugins should use.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}
