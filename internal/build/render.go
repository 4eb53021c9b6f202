package build

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/model"
)

// maxLayoutDepth bounds layout chains so a cycle fails instead of looping.
const maxLayoutDepth = 32

type layout struct {
	path   string
	format string
	data   map[string]any
	body   string
	parent string
}

// layoutChain resolves a layout and its parents, innermost first.
func (b *Builder) layoutChain(cache map[string]*layout, name string) ([]*layout, error) {
	var chain []*layout
	seen := make(map[string]bool)
	for name != "" {
		if seen[name] || len(chain) >= maxLayoutDepth {
			return nil, fmt.Errorf("layout cycle through %q", name)
		}
		seen[name] = true

		l, err := b.loadLayout(cache, name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, l)
		name = l.parent
	}
	return chain, nil
}

// loadLayout finds name in the includes directory, trying the bare name
// first and then each template format extension.
func (b *Builder) loadLayout(cache map[string]*layout, name string) (*layout, error) {
	if l, ok := cache[name]; ok {
		return l, nil
	}

	opts := b.site.Options
	candidates := []string{name}
	for _, f := range []string{config.FormatNunjucks, config.FormatHTML, config.FormatMarkdown} {
		candidates = append(candidates, name+"."+f)
	}

	for _, candidate := range candidates {
		p := filepath.Join(opts.IncludesDir(), filepath.FromSlash(candidate))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", p, err)
		}

		var fm map[string]any
		body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
		if err != nil {
			return nil, fmt.Errorf("parse layout front matter %s: %w", p, err)
		}
		if fm == nil {
			fm = make(map[string]any)
		}
		fm = normalize(fm).(map[string]any)

		l := &layout{
			path:   p,
			format: config.NormalizeFormat(filepath.Ext(p)),
			data:   fm,
			body:   string(body),
			parent: stringValue(fm["layout"]),
		}
		cache[name] = l
		return l, nil
	}
	return nil, fmt.Errorf("layout %q not found in %s", name, opts.IncludesDir())
}

// pageContext builds the template data for a page: global data, then layout
// front matter from the outermost layout in, then the page's own front
// matter. page and collections are always set.
func pageContext(global map[string]any, chain []*layout, page *model.Page, collections map[string]any) map[string]any {
	ctx := make(map[string]any, len(global)+len(page.Data)+3)
	merge(ctx, global)
	for i := len(chain) - 1; i >= 0; i-- {
		merge(ctx, chain[i].data)
	}
	merge(ctx, page.Data)
	if _, ok := ctx["title"]; !ok && page.Title != "" {
		ctx["title"] = page.Title
	}
	ctx["page"] = page.TemplateData()
	ctx["collections"] = collections
	return ctx
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		dst[identifier(k)] = v
	}
}

// renderPage renders the page body and wraps it in its layouts. Each layout
// sees the inner output as "content".
func (b *Builder) renderPage(eng *engine.Engine, md goldmark.Markdown, page *model.Page, chain []*layout, ctx map[string]any) (string, error) {
	content, err := b.renderTemplate(eng, md, page.InputPath, page.Format, string(page.Body), ctx)
	if err != nil {
		return "", err
	}
	for _, l := range chain {
		ctx["content"] = content
		content, err = b.renderTemplate(eng, md, l.path, l.format, l.body, ctx)
		if err != nil {
			return "", err
		}
	}
	return content, nil
}

// renderTemplate preprocesses src with the engine configured for format and
// converts Markdown to HTML.
func (b *Builder) renderTemplate(eng *engine.Engine, md goldmark.Markdown, name, format, src string, ctx map[string]any) (string, error) {
	out := src
	if b.site.Options.EngineFor(format) == config.EngineNunjucks {
		rendered, err := eng.RenderString(name, src, ctx)
		if err != nil {
			return "", err
		}
		out = rendered
	}
	if format == config.FormatMarkdown {
		var buf bytes.Buffer
		if err := md.Convert([]byte(out), &buf); err != nil {
			return "", fmt.Errorf("failed to convert markdown to HTML for %s: %w", name, err)
		}
		out = buf.String()
	}
	return out, nil
}

// writeOutput writes content to the page's output path.
func writeOutput(page *model.Page, content string) error {
	if page.OutputPath == "" {
		return errors.New("page has no output path")
	}
	if err := os.MkdirAll(filepath.Dir(page.OutputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", page.OutputPath, err)
	}
	if err := os.WriteFile(page.OutputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", page.OutputPath, err)
	}
	return nil
}

// layoutName trims whitespace and a leading slash from a layout reference.
func layoutName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/")
}
