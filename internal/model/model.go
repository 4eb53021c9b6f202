package model

import (
	"sort"
	"time"
)

// Page is a single template in the input tree (page, post, feed...).
type Page struct {
	InputPath    string // path of the source file, e.g. src/blog/hello.md
	Format       string // template format: njk, md or html
	FileSlug     string
	FilePathStem string // input-relative path without extension, e.g. /blog/hello
	URL          string // site-relative URL; empty when the page is not written
	OutputPath   string // file written under the output directory; empty when not written
	Date         time.Time
	Title        string
	Tags         []string
	Layout       string
	Data         map[string]any // front matter
	Body         []byte         // template source without front matter

	ExcludeFromCollections bool
}

// Published reports whether the page produces an output file.
func (p *Page) Published() bool {
	return p.OutputPath != ""
}

// TemplateData is the "page" variable visible to templates.
func (p *Page) TemplateData() map[string]any {
	return map[string]any{
		"url":          p.URL,
		"inputPath":    p.InputPath,
		"outputPath":   p.OutputPath,
		"fileSlug":     p.FileSlug,
		"filePathStem": p.FilePathStem,
		"date":         p.Date,
	}
}

// CollectionItem is the view of a page inside a collection.
func (p *Page) CollectionItem() map[string]any {
	item := p.TemplateData()
	item["data"] = p.Data
	item["title"] = p.Title
	item["tags"] = p.Tags
	return item
}

// Collections groups pages by tag. The "all" collection holds every page
// that is not excluded.
type Collections map[string][]*Page

// CollectionAll is the name of the collection holding every page.
const CollectionAll = "all"

// BuildCollections groups pages and sorts every collection by date, then by
// input path.
func BuildCollections(pages []*Page) Collections {
	c := Collections{CollectionAll: {}}
	for _, p := range pages {
		if p.ExcludeFromCollections {
			continue
		}
		c[CollectionAll] = append(c[CollectionAll], p)
		for _, tag := range p.Tags {
			if tag == CollectionAll {
				continue
			}
			c[tag] = append(c[tag], p)
		}
	}
	for _, items := range c {
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].Date.Equal(items[j].Date) {
				return items[i].Date.Before(items[j].Date)
			}
			return items[i].InputPath < items[j].InputPath
		})
	}
	return c
}

// TemplateData is the "collections" variable visible to templates.
func (c Collections) TemplateData() map[string]any {
	out := make(map[string]any, len(c))
	for name, pages := range c {
		items := make([]map[string]any, 0, len(pages))
		for _, p := range pages {
			items = append(items, p.CollectionItem())
		}
		out[name] = items
	}
	return out
}
