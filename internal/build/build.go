// Package build turns a source tree into a static site: passthrough copy,
// global data, template discovery, collections, rendering through layouts,
// transforms and output.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Bitlatte/folio/internal/engine"
	"github.com/Bitlatte/folio/internal/logfields"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/site"
)

// Result summarises a finished build.
type Result struct {
	Pages    int
	Skipped  int
	Copied   int
	Duration time.Duration
}

// Builder runs builds for a site configuration. A Builder may run many
// builds, but not concurrently.
type Builder struct {
	site   *site.Config
	logger *slog.Logger
}

func New(sc *site.Config) *Builder {
	return &Builder{site: sc, logger: sc.Logger()}
}

// Run performs one full build.
func (b *Builder) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	opts := b.site.Options
	var res Result

	if err := opts.Validate(); err != nil {
		return res, failed(StageConfig, "", err)
	}
	if info, err := os.Stat(opts.Dir.Input); err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return res, failed(StageDiscover, opts.Dir.Input, fmt.Errorf("input directory unavailable: %w", err))
	}

	b.logger.Info("Starting build",
		logfields.InputPath(opts.Dir.Input), logfields.OutputPath(opts.Dir.Output))

	b.enter(StageClean)
	if opts.Clean {
		b.logger.Debug("Cleaning output directory", logfields.OutputPath(opts.Dir.Output))
		if err := os.RemoveAll(opts.Dir.Output); err != nil {
			return res, failed(StageClean, opts.Dir.Output, err)
		}
	}
	if err := os.MkdirAll(opts.Dir.Output, os.ModePerm); err != nil {
		return res, failed(StageClean, opts.Dir.Output, err)
	}

	b.enter(StagePassthrough)
	copied, err := b.copyPassthrough()
	if err != nil {
		return res, err
	}
	res.Copied = copied

	eng, err := engine.New(
		engine.WithIncludesDir(opts.IncludesDir()),
		engine.WithGlobals(b.site.GlobalData()),
	)
	if err != nil {
		return res, failed(StageConfig, "", err)
	}
	for name, fn := range b.site.Filters() {
		if err := eng.RegisterFilter(name, fn); err != nil {
			return res, failed(StageConfig, "", fmt.Errorf("register filter %q: %w", name, err))
		}
	}

	b.enter(StageData)
	global, err := b.loadGlobalData(eng)
	if err != nil {
		return res, err
	}

	b.enter(StageDiscover)
	pages, err := b.discover(ctx)
	if err != nil {
		return res, err
	}
	b.logger.Debug("Discovered templates", logfields.Count(len(pages)))

	layouts := make(map[string]*layout)
	chains := make(map[*model.Page][]*layout, len(pages))
	outputs := make(map[string]string, len(pages))
	for _, page := range pages {
		chain, err := b.layoutChain(layouts, layoutName(page.Layout))
		if err != nil {
			return res, failed(StageRender, page.InputPath, err)
		}
		chains[page] = chain

		if err := b.resolveURL(eng, page, pageContext(global, chain, page, nil)); err != nil {
			return res, failed(StageRender, page.InputPath, err)
		}
		if !page.Published() {
			continue
		}
		if other, ok := outputs[page.OutputPath]; ok {
			return res, failed(StageWrite, page.InputPath,
				fmt.Errorf("%w: %s is also written by %s", ErrDuplicateOutput, page.OutputPath, other))
		}
		outputs[page.OutputPath] = page.InputPath
	}

	b.enter(StageRender)
	collections := model.BuildCollections(pages).TemplateData()
	md := b.newMarkdown()

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !page.Published() {
			res.Skipped++
			continue
		}

		content, err := b.renderPage(eng, md, page, chains[page], pageContext(global, chains[page], page, collections))
		if err != nil {
			return res, failed(StageRender, page.InputPath, err)
		}
		content, err = b.site.ApplyTransforms(page, content)
		if err != nil {
			return res, failed(StageRender, page.InputPath, err)
		}

		if err := writeOutput(page, content); err != nil {
			return res, failed(StageWrite, page.InputPath, err)
		}
		b.logger.Debug("Wrote page", logfields.InputPath(page.InputPath), logfields.URL(page.URL))
		res.Pages++
	}

	b.enter(StageAfterBuild)
	if err := b.site.RunAfterBuild(opts.Dir.Output); err != nil {
		return res, failed(StageAfterBuild, "", err)
	}

	res.Duration = time.Since(start)
	b.logger.Info("Build completed",
		slog.Int("pages", res.Pages),
		slog.Int("copied", res.Copied),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (b *Builder) enter(stage Stage) {
	b.logger.Debug("Entering stage", logfields.Stage(string(stage)))
}

func (b *Builder) newMarkdown() goldmark.Markdown {
	exts := append([]goldmark.Extender{extension.GFM, extension.Footnote}, b.site.MarkdownExtensions()...)
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
}
