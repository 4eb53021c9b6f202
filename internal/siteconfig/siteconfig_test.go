package siteconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/filters"
	"github.com/Bitlatte/folio/internal/plugins/relativelinks"
	"github.com/Bitlatte/folio/internal/plugins/syntaxhighlight"
	"github.com/Bitlatte/folio/internal/site"
)

func TestApply_RegistersDefaults(t *testing.T) {
	opts := config.Default()
	opts.Locale = "en-US"
	c := site.New(opts, nil)

	require.NoError(t, Apply(c))

	assert.Equal(t, []string{"./src/assets/favicon"}, c.PassthroughCopies())
	for _, name := range []string{relativelinks.FilterName, syntaxhighlight.FilterName, PostDateFilter} {
		assert.Contains(t, c.Filters(), name)
	}
	assert.Len(t, c.MarkdownExtensions(), 1)

	got, err := c.Filters()[PostDateFilter]("2024-01-05T00:00:00Z", nil)
	require.NoError(t, err)
	assert.Equal(t, "Jan 5, 2024", got)
}

func TestApply_Idempotent(t *testing.T) {
	c := site.New(config.Default(), nil)
	require.NoError(t, Apply(c))
	require.NoError(t, Apply(c))

	assert.Len(t, c.MarkdownExtensions(), 1)
}

func TestLocale(t *testing.T) {
	opts := config.Default()
	assert.Equal(t, filters.ProcessLocale(), Locale(opts))

	opts.Locale = "de_DE.UTF-8"
	assert.Equal(t, language.MustParse("de-DE"), Locale(opts))
}
