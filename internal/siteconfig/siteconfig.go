// Package siteconfig is the project configuration: it registers folio's
// plugins, filters and passthrough copies on a site.Config.
package siteconfig

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/filters"
	"github.com/Bitlatte/folio/internal/plugins/relativelinks"
	"github.com/Bitlatte/folio/internal/plugins/syntaxhighlight"
	"github.com/Bitlatte/folio/internal/site"
)

// PostDateFilter is the template name of the date filter.
const PostDateFilter = "postDate"

// Apply wires the default project setup onto c.
func Apply(c *site.Config) error {
	c.AddPassthroughCopy(c.Options.PassthroughCopy...)

	if err := c.AddPlugin(relativelinks.New()); err != nil {
		return err
	}
	if err := c.AddPlugin(syntaxhighlight.New(c.Options.Highlight)); err != nil {
		return err
	}

	locale := Locale(c.Options)
	c.AddFilter(PostDateFilter, func(in any, _ any) (any, error) {
		return filters.FormatDate(in, locale), nil
	})
	return nil
}

// Locale is the configured locale, or the process locale when none is set.
func Locale(opts config.Config) language.Tag {
	if strings.TrimSpace(opts.Locale) != "" {
		return filters.ParseLocale(opts.Locale)
	}
	return filters.ProcessLocale()
}
