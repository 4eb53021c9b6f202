// Package filters holds the template filters folio registers with its
// template engine. Every filter is a pure string transformation and never
// fails: bad input produces a best-effort string.
package filters

import (
	"path"
	"strings"
)

// RelativePath returns the link from the page at pageURL to targetPath.
//
// The page lives in pageURL itself when it ends with a slash and in its
// parent directory otherwise. Relativization is lexical, separators are
// always forward slashes, and a target outside the site root yields a
// leading run of "../". A link from a page to itself is the empty reference,
// which resolves to the current document. Query and fragment suffixes on the
// target are carried over unchanged.
func RelativePath(targetPath, pageURL string) string {
	target, suffix := splitSuffix(toSlash(targetPath))
	page, _ := splitSuffix(toSlash(pageURL))

	page = rooted(page)
	to := rooted(target)
	if path.Clean(to) == path.Clean(page) {
		return suffix
	}

	from := page
	if !strings.HasSuffix(page, "/") {
		from = path.Dir(page)
	}

	rel := relative(from, to)
	if rel != "" && strings.HasSuffix(target, "/") {
		rel += "/"
	}
	return rel + suffix
}

// relative is the lexical relative path between two rooted paths. Equal
// paths yield "".
func relative(from, to string) string {
	fromSegs := segments(from)
	toSegs := segments(to)

	i := 0
	for i < len(fromSegs) && i < len(toSegs) && fromSegs[i] == toSegs[i] {
		i++
	}

	parts := make([]string, 0, len(fromSegs)-i+len(toSegs)-i)
	for range fromSegs[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toSegs[i:]...)
	return strings.Join(parts, "/")
}

func segments(p string) []string {
	cleaned := path.Clean(p)
	if cleaned == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(cleaned, "/"), "/")
}

func rooted(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// splitSuffix separates a URL path from its query and fragment.
func splitSuffix(p string) (string, string) {
	idx := strings.IndexAny(p, "?#")
	if idx == -1 {
		return p, ""
	}
	return p[:idx], p[idx:]
}
