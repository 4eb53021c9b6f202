package build

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/logfields"
)

var invalidIdentChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// loadGlobalData reads every JSON and YAML file under the data directory.
// A file's base name becomes its key; subdirectories nest.
func (b *Builder) loadGlobalData(eng *engine.Engine) (map[string]any, error) {
	opts := b.site.Options
	dataDir := opts.DataDir()
	data := make(map[string]any)

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return data, nil
	}

	err := filepath.WalkDir(dataDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			return nil
		}

		raw, err := os.ReadFile(p)
		if err != nil {
			return failed(StageData, p, err)
		}
		if opts.EngineFor(config.FormatData) == config.EngineNunjucks {
			rendered, err := eng.RenderString(p, string(raw), b.site.GlobalData())
			if err != nil {
				return failed(StageData, p, err)
			}
			raw = []byte(rendered)
		}

		value, err := decodeData(ext, raw)
		if err != nil {
			return failed(StageData, p, err)
		}

		rel, err := filepath.Rel(dataDir, p)
		if err != nil {
			return failed(StageData, p, err)
		}
		keys := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), path.Ext(rel)), "/")
		setNested(data, keys, value)
		b.logger.Debug("Loaded global data", logfields.InputPath(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func decodeData(ext string, raw []byte) (any, error) {
	var v any
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		return v, nil
	default:
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
		return normalize(v), nil
	}
}

func setNested(data map[string]any, keys []string, value any) {
	cur := data
	for _, k := range keys[:len(keys)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[k] = next
		}
		cur = next
	}
	last := keys[len(keys)-1]
	if existing, ok := cur[last].(map[string]any); ok {
		if incoming, ok := value.(map[string]any); ok {
			for k, v := range incoming {
				existing[k] = v
			}
			return
		}
	}
	cur[last] = value
}

// normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

// identifier makes a data key usable as a template variable name.
func identifier(key string) string {
	return invalidIdentChars.ReplaceAllString(key, "_")
}
