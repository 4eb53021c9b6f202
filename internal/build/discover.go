package build

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/filters"
	"github.com/Bitlatte/folio/internal/logfields"
	"github.com/Bitlatte/folio/internal/model"
)

// discover walks the input directory and loads every template it contains.
// Pages come back sorted by input path.
func (b *Builder) discover(ctx context.Context) ([]*model.Page, error) {
	opts := b.site.Options
	input := filepath.Clean(opts.Dir.Input)
	skip := map[string]bool{
		filepath.Clean(opts.IncludesDir()): true,
		filepath.Clean(opts.DataDir()):     true,
		filepath.Clean(opts.Dir.Output):    true,
	}

	var pages []*model.Page
	err := filepath.WalkDir(input, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != input && (skip[filepath.Clean(p)] || ignoredName(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignoredName(d.Name()) {
			return nil
		}
		format := config.NormalizeFormat(filepath.Ext(p))
		if !opts.HasFormat(format) {
			return nil
		}

		page, err := b.loadPage(input, p, format)
		if err != nil {
			return failed(StageDiscover, p, err)
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].InputPath < pages[j].InputPath })
	return pages, nil
}

func ignoredName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "node_modules"
}

// loadPage reads a template and its front matter. URLs are resolved later,
// once global data is available to permalink templates.
func (b *Builder) loadPage(input, p, format string) (*model.Page, error) {
	fileBytes, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
	if err != nil {
		b.logger.Warn("Could not parse front matter, treating file as plain template",
			logfields.InputPath(p), logfields.Error(err))
		body = fileBytes
		fm = nil
	}
	if fm == nil {
		fm = make(map[string]any)
	}
	fm = normalize(fm).(map[string]any)

	rel, err := filepath.Rel(input, p)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.ToSlash(rel), path.Ext(rel))

	page := &model.Page{
		InputPath:    p,
		Format:       format,
		FileSlug:     fileSlug(stem),
		FilePathStem: "/" + stem,
		Data:         fm,
		Body:         body,
		Tags:         stringList(fm["tags"]),
		Layout:       stringValue(fm["layout"]),
	}
	page.Title = stringValue(fm["title"])
	if page.Title == "" {
		page.Title = titleFromSlug(page.FileSlug)
	}
	page.Date = b.pageDate(p, fm["date"], info.ModTime())
	if exclude, ok := fm["eleventyExcludeFromCollections"].(bool); ok {
		page.ExcludeFromCollections = exclude
	}
	return page, nil
}

// fileSlug is the last path segment of stem, or its parent directory for
// index templates.
func fileSlug(stem string) string {
	base := path.Base(stem)
	if base != "index" {
		return base
	}
	dir := path.Dir(stem)
	if dir == "." {
		return ""
	}
	return path.Base(dir)
}

func titleFromSlug(slug string) string {
	if slug == "" {
		return ""
	}
	words := strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " ")
	return cases.Title(language.English).String(words)
}

func (b *Builder) pageDate(p string, value any, modTime time.Time) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		if t, err := filters.ParseISO(v); err == nil {
			return t
		}
		if !strings.EqualFold(v, "Last Modified") {
			b.logger.Warn("Could not parse date, using file modification time",
				logfields.InputPath(p), "date", v)
		}
	}
	return modTime
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}
