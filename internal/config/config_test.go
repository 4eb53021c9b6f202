package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Dirs{Input: "src", Output: "_site", Includes: "_includes", Data: "_data"}, cfg.Dir)
	assert.Equal(t, []string{"njk", "md", "html"}, cfg.TemplateFormats)
	assert.Equal(t, "njk", cfg.MarkdownTemplateEngine)
	assert.Equal(t, "njk", cfg.HTMLTemplateEngine)
	assert.Equal(t, "njk", cfg.DataTemplateEngine)
	assert.Equal(t, []string{"./src/assets/favicon"}, cfg.PassthroughCopy)
	assert.True(t, cfg.Clean)
	assert.Equal(t, "github", cfg.Highlight.Style)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join("src", "_includes"), cfg.IncludesDir())
	assert.Equal(t, filepath.Join("src", "_data"), cfg.DataDir())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"dir:",
		"  input: content",
		"  output: public",
		"templateFormats: [md]",
		"markdownTemplateEngine: false",
		"highlight:",
		"  style: monokai",
		"  lineNumbers: true",
	}, "\n")), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "content", cfg.Dir.Input)
	assert.Equal(t, "public", cfg.Dir.Output)
	assert.Equal(t, "_includes", cfg.Dir.Includes)
	assert.Equal(t, []string{"md"}, cfg.TemplateFormats)
	assert.Equal(t, "", cfg.EngineFor("md"))
	assert.Equal(t, "njk", cfg.EngineFor("html"))
	assert.Equal(t, "monokai", cfg.Highlight.Style)
	assert.True(t, cfg.Highlight.LineNumbers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty input", func(c *Config) { c.Dir.Input = " " }, "dir.input"},
		{"empty output", func(c *Config) { c.Dir.Output = "" }, "dir.output"},
		{"same input and output", func(c *Config) { c.Dir.Output = "./src" }, "must differ"},
		{"no formats", func(c *Config) { c.TemplateFormats = nil }, "at least one"},
		{"unknown format", func(c *Config) { c.TemplateFormats = []string{"liquid"} }, `"liquid"`},
		{"unknown engine", func(c *Config) { c.HTMLTemplateEngine = "liquid" }, "htmlTemplateEngine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEngineFor(t *testing.T) {
	cfg := Default()
	cfg.HTMLTemplateEngine = "0"
	cfg.DataTemplateEngine = " njk "

	assert.Equal(t, "njk", cfg.EngineFor(".NJK"))
	assert.Equal(t, "njk", cfg.EngineFor("md"))
	assert.Equal(t, "", cfg.EngineFor("html"))
	assert.Equal(t, "", cfg.EngineFor("txt"))
	assert.Equal(t, "njk", cfg.EngineFor(FormatData))

	cfg.DataTemplateEngine = "NJK"
	assert.Equal(t, "njk", cfg.EngineFor(FormatData))
	require.NoError(t, cfg.Validate())

	cfg.DataTemplateEngine = "false"
	assert.Equal(t, "", cfg.EngineFor(FormatData))
}

func TestHasFormat(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.HasFormat(".md"))
	assert.True(t, cfg.HasFormat("HTML"))
	assert.False(t, cfg.HasFormat(".css"))
}
