// Package syntaxhighlight highlights code with chroma: fenced code blocks in
// Markdown through a goldmark extension, and template snippets through the
// highlight filter.
package syntaxhighlight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/site"
)

const (
	Name       = "syntax-highlight"
	FilterName = "highlight"
)

// Plugin wires chroma into Markdown rendering and templates.
type Plugin struct {
	opts config.Highlight
}

// New returns the plugin configured by opts. An empty style means "github".
func New(opts config.Highlight) *Plugin {
	if strings.TrimSpace(opts.Style) == "" {
		opts.Style = "github"
	}
	return &Plugin{opts: opts}
}

func (*Plugin) Name() string { return Name }

func (p *Plugin) Register(c *site.Config) error {
	if styles.Get(p.opts.Style) == styles.Fallback && !strings.EqualFold(p.opts.Style, styles.Fallback.Name) {
		c.Logger().Warn("Unknown highlight style, using fallback", "style", p.opts.Style)
	}

	c.AddMarkdownExtension(highlighting.NewHighlighting(
		highlighting.WithStyle(p.opts.Style),
		highlighting.WithFormatOptions(p.formatOptions()...),
	))
	c.AddFilter(FilterName, p.filter)

	if p.opts.Classes && p.opts.CSSPath != "" {
		c.AddAfterBuild(Name, p.writeCSS)
	}
	return nil
}

func (p *Plugin) formatOptions() []chromahtml.Option {
	return []chromahtml.Option{
		chromahtml.WithClasses(p.opts.Classes),
		chromahtml.WithLineNumbers(p.opts.LineNumbers),
	}
}

// filter implements {{ code|highlight:"go" }}.
func (p *Plugin) filter(in any, param any) (any, error) {
	code := fmt.Sprint(in)
	lang, _ := param.(string)
	out, err := p.Highlight(code, lang)
	if err != nil {
		return nil, err
	}
	return engine.SafeHTML(out), nil
}

// Highlight renders code as HTML. An unknown or empty language is analysed
// from the code itself and falls back to plain text.
func (p *Plugin) Highlight(code, lang string) (string, error) {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}

	var b strings.Builder
	formatter := chromahtml.New(p.formatOptions()...)
	if err := formatter.Format(&b, styles.Get(p.opts.Style), iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return b.String(), nil
}

// writeCSS writes the class-based style sheet under the output directory.
func (p *Plugin) writeCSS(outputDir string) error {
	path := filepath.Join(outputDir, filepath.FromSlash(strings.TrimPrefix(p.opts.CSSPath, "/")))
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	formatter := chromahtml.New(p.formatOptions()...)
	if err := formatter.WriteCSS(f, styles.Get(p.opts.Style)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
