// Package relativelinks makes generated sites portable: it exposes the
// relativePath filter and rewrites root-relative URLs in HTML output into
// page-relative ones, so the site works from any directory depth.
package relativelinks

import (
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/Bitlatte/folio/internal/filters"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/site"
)

// Name identifies the plugin.
const Name = "relative-links"

// FilterName is the template name of the relativePath filter.
const FilterName = "relativePath"

// urlAttrs lists, per element, the attributes holding a single URL.
var urlAttrs = map[string][]string{
	"a":      {"href"},
	"area":   {"href"},
	"link":   {"href"},
	"img":    {"src"},
	"script": {"src"},
	"source": {"src"},
	"iframe": {"src"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"form":   {"action"},
}

// srcsetTags lists the elements whose srcset candidates are rewritten.
var srcsetTags = map[string]bool{"img": true, "source": true}

// Plugin registers the relativePath filter and the link rewriting transform.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) Name() string { return Name }

func (*Plugin) Register(c *site.Config) error {
	c.AddFilter(FilterName, Filter)
	c.AddTransform(Name, Transform)
	return nil
}

// Filter is relativePath as a template filter:
// {{ "/css/site.css"|relativePath:page.url }}.
func Filter(in any, param any) (any, error) {
	return filters.RelativePath(toString(in), toString(param)), nil
}

// Transform rewrites root-relative URLs in an HTML page. Other outputs, and
// pages without a URL, are returned unchanged. Only the start tags carrying a
// rewritten attribute are re-rendered; all other markup is copied byte for
// byte, so fragments stay fragments and entities are kept.
func Transform(page *model.Page, content string) (string, error) {
	if page == nil || page.URL == "" || !strings.HasSuffix(strings.ToLower(page.OutputPath), ".html") {
		return content, nil
	}

	z := html.NewTokenizer(strings.NewReader(content))
	var out strings.Builder
	out.Grow(len(content))
	changed := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("parse %s: %w", page.OutputPath, err)
			}
			break
		}
		// Token lowercases the tokenizer buffer in place.
		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.WriteString(raw)
			continue
		}
		tok := z.Token()
		if rewriteTag(&tok, page.URL) {
			out.WriteString(tok.String())
			changed = true
			continue
		}
		out.WriteString(raw)
	}
	if !changed {
		return content, nil
	}
	return out.String(), nil
}

// rewriteTag rewrites the URL attributes of a start tag in place and reports
// whether any changed.
func rewriteTag(tok *html.Token, pageURL string) bool {
	attrs := urlAttrs[tok.Data]
	srcset := srcsetTags[tok.Data]
	if len(attrs) == 0 && !srcset {
		return false
	}

	changed := false
	for i, a := range tok.Attr {
		if a.Namespace != "" {
			continue
		}
		var rewritten string
		var ok bool
		switch {
		case a.Key == "srcset" && srcset:
			rewritten, ok = rewriteSrcset(a.Val, pageURL)
		case slices.Contains(attrs, a.Key):
			rewritten, ok = Rewrite(a.Val, pageURL)
		}
		if ok {
			tok.Attr[i].Val = rewritten
			changed = true
		}
	}
	return changed
}

// Rewrite returns the page-relative form of a root-relative URL. It reports
// false for anything else: absolute and protocol-relative URLs, relative
// paths and bare fragments. A link to a file page itself becomes "./" plus
// its base name, and a link to the current directory becomes "./", so the
// attribute never ends up empty.
func Rewrite(value, pageURL string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return "", false
	}

	rel := filters.RelativePath(value, pageURL)
	if rel == "" || rel[0] == '?' || rel[0] == '#' {
		target, _ := splitSuffix(value)
		prefix := "./"
		if !strings.HasSuffix(pageURL, "/") && !strings.HasSuffix(target, "/") &&
			path.Clean(target) == path.Clean(pageURL) {
			prefix += path.Base(target)
		}
		rel = prefix + rel
	}
	return rel, true
}

func rewriteSrcset(value, pageURL string) (string, bool) {
	candidates := strings.Split(value, ",")
	changed := false
	for i, candidate := range candidates {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		if rewritten, ok := Rewrite(fields[0], pageURL); ok {
			fields[0] = rewritten
			changed = true
		}
		candidates[i] = strings.Join(fields, " ")
	}
	if !changed {
		return value, false
	}
	return strings.Join(candidates, ", "), true
}

func splitSuffix(p string) (string, string) {
	idx := strings.IndexAny(p, "?#")
	if idx == -1 {
		return p, ""
	}
	return p[:idx], p[idx:]
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
