package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/model"
)

type countingPlugin struct {
	name  string
	calls int
	err   error
}

func (p *countingPlugin) Name() string { return p.name }

func (p *countingPlugin) Register(c *Config) error {
	p.calls++
	if p.err != nil {
		return p.err
	}
	c.AddFilter(p.name, func(in any, _ any) (any, error) { return in, nil })
	return nil
}

func TestAddPlugin_RegistersOnce(t *testing.T) {
	c := New(config.Default(), nil)
	p := &countingPlugin{name: "echo"}

	require.NoError(t, c.AddPlugin(p))
	require.NoError(t, c.AddPlugin(p))

	assert.Equal(t, 1, p.calls)
	assert.Contains(t, c.Filters(), "echo")
}

func TestAddPlugin_Errors(t *testing.T) {
	c := New(config.Default(), nil)

	require.Error(t, c.AddPlugin(nil))

	err := c.AddPlugin(&countingPlugin{name: "bad", err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.NotContains(t, c.Filters(), "bad")
}

func TestAddFilter_LastWins(t *testing.T) {
	c := New(config.Default(), nil)
	c.AddFilter("v", func(any, any) (any, error) { return 1, nil })
	c.AddFilter("v", func(any, any) (any, error) { return 2, nil })
	c.AddFilter("", func(any, any) (any, error) { return 3, nil })

	require.Len(t, c.Filters(), 1)
	got, err := c.Filters()["v"](nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestApplyTransforms_InOrder(t *testing.T) {
	c := New(config.Default(), nil)
	c.AddTransform("a", func(_ *model.Page, s string) (string, error) { return s + "a", nil })
	c.AddTransform("b", func(_ *model.Page, s string) (string, error) { return s + "b", nil })

	out, err := c.ApplyTransforms(&model.Page{}, "x")
	require.NoError(t, err)
	assert.Equal(t, "xab", out)
}

func TestApplyTransforms_NamesFailingTransform(t *testing.T) {
	c := New(config.Default(), nil)
	c.AddTransform("broken", func(*model.Page, string) (string, error) { return "", errors.New("nope") })

	_, err := c.ApplyTransforms(&model.Page{}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestPassthroughCopies_Deduplicated(t *testing.T) {
	c := New(config.Default(), nil)
	c.AddPassthroughCopy("./src/assets/favicon", " ", "./src/img")
	c.AddPassthroughCopy("./src/assets/favicon")

	assert.Equal(t, []string{"./src/assets/favicon", "./src/img"}, c.PassthroughCopies())
}

func TestRunAfterBuild(t *testing.T) {
	c := New(config.Default(), nil)
	var seen []string
	c.AddAfterBuild("first", func(dir string) error { seen = append(seen, "first:"+dir); return nil })
	c.AddAfterBuild("second", func(string) error { return errors.New("fail") })
	c.AddAfterBuild("third", func(string) error { seen = append(seen, "third"); return nil })

	err := c.RunAfterBuild("_site")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"second"`)
	assert.Equal(t, []string{"first:_site"}, seen)
}

func TestAddGlobalData(t *testing.T) {
	c := New(config.Default(), nil)
	c.AddGlobalData("site", map[string]any{"title": "Folio"})
	c.AddGlobalData("", 1)

	assert.Equal(t, map[string]any{"site": map[string]any{"title": "Folio"}}, c.GlobalData())
}
