package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func inputPaths(pages []*Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.InputPath)
	}
	return out
}

func TestBuildCollections(t *testing.T) {
	pages := []*Page{
		{InputPath: "src/c.md", Date: day(3), Tags: []string{"post"}},
		{InputPath: "src/b.md", Date: day(1), Tags: []string{"post", "go"}},
		{InputPath: "src/a.md", Date: day(1), Tags: []string{"go"}},
		{InputPath: "src/about.md", Date: day(2)},
		{InputPath: "src/hidden.md", Date: day(1), Tags: []string{"post"}, ExcludeFromCollections: true},
	}

	got := BuildCollections(pages)

	want := map[string][]string{
		"all":  {"src/a.md", "src/b.md", "src/about.md", "src/c.md"},
		"post": {"src/b.md", "src/c.md"},
		"go":   {"src/a.md", "src/b.md"},
	}
	gotPaths := make(map[string][]string, len(got))
	for name, items := range got {
		gotPaths[name] = inputPaths(items)
	}
	if diff := cmp.Diff(want, gotPaths); diff != "" {
		t.Errorf("BuildCollections() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildCollections_AlwaysHasAll(t *testing.T) {
	got := BuildCollections(nil)
	assert.Contains(t, got, CollectionAll)
	assert.Empty(t, got[CollectionAll])
}

func TestCollectionsTemplateData(t *testing.T) {
	p := &Page{InputPath: "src/a.md", URL: "/a/", Title: "A", Data: map[string]any{"title": "A"}}
	data := Collections{"all": {p}}.TemplateData()

	items, ok := data["all"].([]map[string]any)
	if assert.True(t, ok) && assert.Len(t, items, 1) {
		assert.Equal(t, "/a/", items[0]["url"])
		assert.Equal(t, "A", items[0]["title"])
		assert.Equal(t, map[string]any{"title": "A"}, items[0]["data"])
	}
}

func TestPublished(t *testing.T) {
	assert.True(t, (&Page{OutputPath: "_site/index.html"}).Published())
	assert.False(t, (&Page{}).Published())
}
