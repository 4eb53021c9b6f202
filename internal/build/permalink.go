package build

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/model"
)

const indexFile = "index.html"

// resolveURL sets the page URL and output path. A permalink in front matter
// is rendered as a template and wins over the default, which maps
// dir/name.ext to /dir/name/ and dir/index.ext to /dir/.
func (b *Builder) resolveURL(eng *engine.Engine, page *model.Page, ctx map[string]any) error {
	url := defaultURL(page.FilePathStem)

	switch permalink := page.Data["permalink"].(type) {
	case bool:
		if !permalink {
			page.URL = ""
			page.OutputPath = ""
			return nil
		}
	case string:
		rendered, err := eng.RenderString(page.InputPath+"#permalink", permalink, ctx)
		if err != nil {
			return fmt.Errorf("render permalink: %w", err)
		}
		if rendered = strings.TrimSpace(rendered); rendered != "" {
			url = cleanURL(rendered)
		}
	case nil:
	default:
		return fmt.Errorf("permalink must be a string or false, got %T", permalink)
	}

	file := url
	if strings.HasSuffix(file, "/") {
		file += indexFile
	}
	page.URL = url
	if strings.HasSuffix(url, "/"+indexFile) {
		page.URL = strings.TrimSuffix(url, indexFile)
	}
	page.OutputPath = filepath.Join(b.site.Options.Dir.Output, filepath.FromSlash(strings.TrimPrefix(file, "/")))
	return nil
}

func defaultURL(stem string) string {
	if path.Base(stem) == "index" {
		dir := path.Dir(stem)
		if dir == "/" {
			return "/"
		}
		return dir + "/"
	}
	return stem + "/"
}

// cleanURL roots a permalink and removes dot segments so it cannot escape
// the output directory. A trailing slash is kept.
func cleanURL(u string) string {
	u = strings.ReplaceAll(u, `\`, "/")
	trailing := strings.HasSuffix(u, "/")
	cleaned := path.Clean("/" + u)
	if trailing && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}
