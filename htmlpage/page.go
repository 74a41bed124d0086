// Package htmlpage implements scraper.Page over a statically fetched HTML
// document. No JavaScript runs: click handlers are only visible through
// their onclick attribute and image sizes come from width/height attributes.
package htmlpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/scraper"
)

// ErrNotLoaded is returned by queries issued before a successful Navigate.
var ErrNotLoaded = errors.New("htmlpage: no document loaded")

// Fetcher loads a document. The default fetcher uses a Chrome-fingerprinted
// HTTP client.
type Fetcher func(ctx context.Context, url string) (io.Reader, *url.URL, error)

// Page is a parsed HTML document.
type Page struct {
	fetch Fetcher

	mu   sync.RWMutex
	doc  *goquery.Document
	base *url.URL

	closeOnce sync.Once
	release   func()
}

var _ scraper.Page = (*Page)(nil)

// New returns an empty Page that loads documents with fetch.
func New(fetch Fetcher) *Page {
	return &Page{fetch: fetch, release: func() {}}
}

// FromHTML returns a Page already holding the given document, as if it had
// been loaded from pageURL.
func FromHTML(pageURL, document string) (*Page, error) {
	p := New(func(context.Context, string) (io.Reader, *url.URL, error) {
		u, err := url.Parse(pageURL)
		return strings.NewReader(document), u, err
	})
	if err := p.Navigate(context.Background(), pageURL, time.Minute); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, final, err := p.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("htmlpage: parse %s: %w", rawURL, err)
	}

	p.mu.Lock()
	p.doc, p.base = doc, final
	p.mu.Unlock()
	return nil
}

func (p *Page) loaded() (*goquery.Document, *url.URL, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.doc == nil {
		return nil, nil, ErrNotLoaded
	}
	return p.doc, p.base, nil
}

// find runs a compiled selector so malformed selectors fail loudly.
func (p *Page) find(ctx context.Context, selector string) (*goquery.Selection, *url.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	doc, base, err := p.loaded()
	if err != nil {
		return nil, nil, err
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, nil, fmt.Errorf("htmlpage: selector %q: %w", selector, err)
	}
	return doc.FindMatcher(sel), base, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	s, _, err := p.find(ctx, "title")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s.First().Text()), nil
}

func (p *Page) Description(ctx context.Context) (string, bool, error) {
	s, _, err := p.find(ctx, `meta[name="description"]`)
	if err != nil {
		return "", false, err
	}
	if s.Length() == 0 {
		return "", false, nil
	}
	content, _ := s.First().Attr("content")
	return content, true, nil
}

func (p *Page) Texts(ctx context.Context, selector string) ([]string, error) {
	s, _, err := p.find(ctx, selector)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, s.Length())
	for _, n := range s.Nodes {
		if t := innerText(n); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

func (p *Page) Interactive(ctx context.Context, selector string) ([]cleaner.InteractiveElement, error) {
	s, base, err := p.find(ctx, selector)
	if err != nil {
		return nil, err
	}
	elements := make([]cleaner.InteractiveElement, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		tag := goquery.NodeName(el)
		ie := cleaner.InteractiveElement{
			Tag:       tag,
			DataLink:  el.AttrOr("data-link", ""),
			OnClick:   el.AttrOr("onclick", ""),
			Text:      innerText(el.Nodes[0]),
			Title:     el.AttrOr("title", ""),
			AriaLabel: el.AttrOr("aria-label", ""),
		}
		if href, ok := el.Attr("href"); ok && tag == "a" {
			ie.Href = resolve(base, href)
		}
		elements = append(elements, ie)
	})
	return elements, nil
}

func (p *Page) Images(ctx context.Context) ([]models.ImageCandidate, error) {
	s, base, err := p.find(ctx, "img")
	if err != nil {
		return nil, err
	}
	images := make([]models.ImageCandidate, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) {
		images = append(images, models.ImageCandidate{
			Src:    resolve(base, el.AttrOr("src", "")),
			Alt:    el.AttrOr("alt", ""),
			Width:  dimension(el.AttrOr("width", "")),
			Height: dimension(el.AttrOr("height", "")),
		})
	})
	return images, nil
}

// Close releases the page's slot. Further calls are no-ops.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.doc = nil
		p.mu.Unlock()
		p.release()
	})
	return nil
}

// resolve makes ref absolute against base, the way the DOM's href and src
// properties do.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// dimension parses an HTML width/height attribute such as "640" or "640px".
func dimension(v string) int {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
