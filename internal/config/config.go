package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Template format names.
const (
	FormatNunjucks = "njk"
	FormatMarkdown = "md"
	FormatHTML     = "html"

	// FormatData selects the engine for global data files.
	FormatData = "data"
)

// EngineNunjucks is the only template engine folio ships.
const EngineNunjucks = "njk"

var knownFormats = []string{FormatNunjucks, FormatMarkdown, FormatHTML}

// Dirs is the directory layout of a site. Includes and Data are relative to
// Input.
type Dirs struct {
	Input    string `mapstructure:"input"`
	Output   string `mapstructure:"output"`
	Includes string `mapstructure:"includes"`
	Data     string `mapstructure:"data"`
}

// Highlight configures the syntax highlighting plugin.
type Highlight struct {
	Style       string `mapstructure:"style"`
	LineNumbers bool   `mapstructure:"lineNumbers"`
	Classes     bool   `mapstructure:"classes"`
	CSSPath     string `mapstructure:"cssPath"`
}

type Config struct {
	Dir                    Dirs      `mapstructure:"dir"`
	TemplateFormats        []string  `mapstructure:"templateFormats"`
	MarkdownTemplateEngine string    `mapstructure:"markdownTemplateEngine"`
	HTMLTemplateEngine     string    `mapstructure:"htmlTemplateEngine"`
	DataTemplateEngine     string    `mapstructure:"dataTemplateEngine"`
	PassthroughCopy        []string  `mapstructure:"passthroughCopy"`
	Locale                 string    `mapstructure:"locale"`
	Clean                  bool      `mapstructure:"clean"`
	Highlight              Highlight `mapstructure:"highlight"`
}

// SetDefaults registers the default site layout on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dir.input", "src")
	v.SetDefault("dir.output", "_site")
	v.SetDefault("dir.includes", "_includes")
	v.SetDefault("dir.data", "_data")
	v.SetDefault("templateFormats", []string{FormatNunjucks, FormatMarkdown, FormatHTML})
	v.SetDefault("markdownTemplateEngine", EngineNunjucks)
	v.SetDefault("htmlTemplateEngine", EngineNunjucks)
	v.SetDefault("dataTemplateEngine", EngineNunjucks)
	v.SetDefault("passthroughCopy", []string{"./src/assets/favicon"})
	v.SetDefault("locale", "")
	v.SetDefault("clean", true)
	v.SetDefault("highlight.style", "github")
	v.SetDefault("highlight.lineNumbers", false)
	v.SetDefault("highlight.classes", false)
	v.SetDefault("highlight.cssPath", "")
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Decoding the defaults alone cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dir.Input) == "" {
		return errors.New("dir.input must not be empty")
	}
	if strings.TrimSpace(c.Dir.Output) == "" {
		return errors.New("dir.output must not be empty")
	}
	if filepath.Clean(c.Dir.Input) == filepath.Clean(c.Dir.Output) {
		return fmt.Errorf("dir.input and dir.output must differ (both %q)", c.Dir.Input)
	}
	if len(c.TemplateFormats) == 0 {
		return errors.New("templateFormats must list at least one format")
	}
	for _, f := range c.TemplateFormats {
		if !slices.Contains(knownFormats, NormalizeFormat(f)) {
			return fmt.Errorf("unknown template format %q (known: %s)", f, strings.Join(knownFormats, ", "))
		}
	}
	for key, engine := range map[string]string{
		"markdownTemplateEngine": c.MarkdownTemplateEngine,
		"htmlTemplateEngine":     c.HTMLTemplateEngine,
		"dataTemplateEngine":     c.DataTemplateEngine,
	} {
		if !EngineDisabled(engine) && NormalizeEngine(engine) != EngineNunjucks {
			return fmt.Errorf("%s: unknown template engine %q", key, engine)
		}
	}
	return nil
}

// IncludesDir is the includes directory joined onto the input directory.
func (c Config) IncludesDir() string {
	return filepath.Join(c.Dir.Input, c.Dir.Includes)
}

// DataDir is the data directory joined onto the input directory.
func (c Config) DataDir() string {
	return filepath.Join(c.Dir.Input, c.Dir.Data)
}

// EngineFor returns the preprocessing engine for a template format, or ""
// when the format is rendered without one.
func (c Config) EngineFor(format string) string {
	var engine string
	switch NormalizeFormat(format) {
	case FormatNunjucks:
		return EngineNunjucks
	case FormatMarkdown:
		engine = c.MarkdownTemplateEngine
	case FormatHTML:
		engine = c.HTMLTemplateEngine
	case FormatData:
		engine = c.DataTemplateEngine
	}
	if EngineDisabled(engine) {
		return ""
	}
	return NormalizeEngine(engine)
}

// HasFormat reports whether format is one of the configured template formats.
func (c Config) HasFormat(format string) bool {
	format = NormalizeFormat(format)
	for _, f := range c.TemplateFormats {
		if NormalizeFormat(f) == format {
			return true
		}
	}
	return false
}

// NormalizeFormat lowercases a format name and drops a leading dot.
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

// NormalizeEngine lowercases an engine name and trims spaces.
func NormalizeEngine(engine string) string {
	return strings.ToLower(strings.TrimSpace(engine))
}

// EngineDisabled reports whether an engine setting turns preprocessing off.
// A YAML false arrives as "false" or "0" after weak decoding.
func EngineDisabled(engine string) bool {
	switch NormalizeEngine(engine) {
	case "", "false", "0", "none":
		return true
	}
	return false
}

// Load decodes the settings held by v and validates them.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
