package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativePath(t *testing.T) {
	tests := []struct {
		name   string
		target string
		page   string
		want   string
	}{
		{"sibling directory from directory page", "/a/b/c.html", "/a/x/", "../b/c.html"},
		{"self link", "/a/b.html", "/a/b.html", ""},
		{"file page uses parent directory", "/a/c.html", "/a/b.html", "c.html"},
		{"root page", "/css/site.css", "/", "css/site.css"},
		{"nested page to root asset", "/css/site.css", "/blog/2024/post/", "../../../css/site.css"},
		{"directory target keeps slash", "/blog/", "/about/", "../blog/"},
		{"site root from nested page", "/", "/blog/post/", "../../"},
		{"page directory itself", "/a/", "/a/b.html", ""},
		{"same directory page", "/a/x/", "/a/x/", ""},
		{"fragment preserved", "/docs/guide/#install", "/docs/", "guide/#install"},
		{"self link keeps fragment", "/a/b.html#top", "/a/b.html", "#top"},
		{"query preserved", "/search/?q=go", "/blog/", "../search/?q=go"},
		{"backslashes normalised", `\a\b\c.html`, `\a\x\`, "../b/c.html"},
		{"unrooted inputs", "img/logo.png", "blog/post/", "../../img/logo.png"},
		{"escaping the root is best effort", "/../../etc/passwd", "/a/", "../etc/passwd"},
		{"dot segments cleaned", "/a/./b/../c.html", "/a/x/", "../c.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativePath(tt.target, tt.page))
		})
	}
}

func TestRelativePath_NeverContainsBackslash(t *testing.T) {
	pages := []string{"/", "/a/", `\a\b\`, "/a/b.html", `C:\site\page.html`, ""}
	targets := []string{"/", `\x\y.css`, "/a/b/c.html", `..\..\up`, "", `a\b`}

	for _, p := range pages {
		for _, target := range targets {
			assert.NotContains(t, RelativePath(target, p), `\`, "target=%q page=%q", target, p)
		}
	}
}
