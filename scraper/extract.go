package scraper

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/models"
)

// DOM selectors for the text signals.
const (
	HeadingSelector   = "h1, h2, h3, h4, h5, h6"
	ParagraphSelector = "p"
	ListSelector      = "ul, ol"
	RawTextSelector   = "div, span"
)

// Extractor pulls PageSignals out of a loaded page.
type Extractor struct {
	Limits config.LimitsConfig

	// Concurrent issues the independent queries in parallel. The result
	// is identical to the sequential path.
	Concurrent bool
}

// NewExtractor returns an Extractor with limits normalized to their defaults.
func NewExtractor(limits config.LimitsConfig, concurrent bool) *Extractor {
	return &Extractor{Limits: limits.WithDefaults(), Concurrent: concurrent}
}

// Extract runs every query against page. Any failed query aborts the
// extraction with an EXTRACTION_FAILURE; a missing description is not a
// failure.
func (e *Extractor) Extract(ctx context.Context, page Queryable) (*models.PageSignals, error) {
	var (
		sig         models.PageSignals
		interactive []cleaner.InteractiveElement
		images      []models.ImageCandidate
	)

	queries := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			sig.Title, err = page.Title(ctx)
			return wrapQuery("title", err)
		},
		func(ctx context.Context) error {
			desc, found, err := page.Description(ctx)
			if err != nil {
				return wrapQuery("description", err)
			}
			if !found {
				slog.Debug("page has no description meta tag")
			}
			sig.Description = desc
			return nil
		},
		e.texts(page, HeadingSelector, e.Limits.Headings, &sig.Headings),
		e.texts(page, ParagraphSelector, e.Limits.Paragraphs, &sig.Paragraphs),
		e.texts(page, ListSelector, e.Limits.Lists, &sig.Lists),
		e.texts(page, RawTextSelector, e.Limits.RawText, &sig.RawText),
		func(ctx context.Context) (err error) {
			interactive, err = page.Interactive(ctx, cleaner.InteractiveSelector)
			return wrapQuery("interactive elements", err)
		},
		func(ctx context.Context) (err error) {
			images, err = page.Images(ctx)
			return wrapQuery("images", err)
		},
	}

	if e.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for _, q := range queries {
			g.Go(func() error { return q(gctx) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, q := range queries {
			if err := q(ctx); err != nil {
				return nil, err
			}
		}
	}

	sig.Links = cleaner.HarvestLinks(interactive, e.Limits.Links)
	sig.Images = cleaner.PickImages(images, e.Limits.Images)
	return &sig, nil
}

// texts returns a query that stores up to limit non-empty texts in dst.
func (e *Extractor) texts(page Queryable, selector string, limit int, dst *[]string) func(context.Context) error {
	return func(ctx context.Context) error {
		raw, err := page.Texts(ctx, selector)
		if err != nil {
			return wrapQuery(selector, err)
		}
		*dst = firstNonEmpty(raw, limit)
		return nil
	}
}

func firstNonEmpty(texts []string, limit int) []string {
	out := make([]string, 0, min(len(texts), limit))
	for _, t := range texts {
		if len(out) == limit {
			break
		}
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func wrapQuery(what string, err error) error {
	if err == nil {
		return nil
	}
	return models.NewDigestError(models.ErrCodeExtraction, "query "+what+" failed", err)
}
