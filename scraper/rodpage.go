package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/models"
)

// In-page query scripts. Each one is a pure read of the DOM.
const (
	jsTitle = `() => document.title || ''`

	jsDescription = `() => {
		const el = document.querySelector('meta[name="description"]');
		return el ? (el.getAttribute('content') || '') : null;
	}`

	jsTexts = `(sel) => Array.from(document.querySelectorAll(sel),
		el => (el.innerText || '').trim()).filter(t => t.length > 0)`

	jsInteractive = `(sel) => Array.from(document.querySelectorAll(sel), el => ({
		tag: el.tagName.toLowerCase(),
		href: el.tagName === 'A' && typeof el.href === 'string' ? el.href : '',
		dataLink: el.getAttribute('data-link') || '',
		clickHandler: typeof el.onclick === 'function' ? el.onclick.toString() : '',
		onclick: el.getAttribute('onclick') || '',
		text: (el.innerText || '').trim(),
		title: el.getAttribute('title') || '',
		ariaLabel: el.getAttribute('aria-label') || '',
	}))`

	jsImages = `() => Array.from(document.images, el => ({
		src: el.currentSrc || el.src || '',
		alt: el.alt || '',
		width: el.naturalWidth || 0,
		height: el.naturalHeight || 0,
	}))`
)

// rodPage is a Page backed by a Chromium tab.
type rodPage struct {
	page   *rod.Page
	router *rod.HijackRouter
	idle   time.Duration

	closeOnce sync.Once
	closeErr  error
	release   func()
}

var _ Page = (*rodPage)(nil)

// Navigate loads url and waits for the page to settle.
//
// Lifecycle:
//
//  1. Deadline        – per-attempt timeout bound to every Rod call
//  2. Idle listener   – registered BEFORE Navigate so no request is missed
//  3. Navigate        – triggers page load
//  4. Wait            – network idle, or DOM stable when the hijack router
//     owns the Fetch domain
//  5. Stop on failure – a timed-out load is stopped before the next attempt
func (p *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	// ── 1. Deadline ──────────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(ctx)

	// ── 2. Idle listener ─────────────────────────────────────────────
	// NOTE: WaitRequestIdle uses the Fetch domain which conflicts with
	// HijackRequests on Chromium 145+.
	var waitIdle func()
	if p.router == nil {
		waitIdle = page.WaitRequestIdle(p.idle, nil, nil, nil)
	}

	// ── 3. Navigate ──────────────────────────────────────────────────
	if err := page.Navigate(url); err != nil {
		p.stopLoading()
		return err
	}

	// ── 4. Wait ──────────────────────────────────────────────────────
	if waitIdle != nil {
		waitIdle()
	} else if err := page.WaitDOMStable(p.idle, 0.1); err != nil {
		p.stopLoading()
		return err
	}

	// ── 5. Deadline check ────────────────────────────────────────────
	// WaitRequestIdle returns silently when the context expires.
	if err := ctx.Err(); err != nil {
		p.stopLoading()
		return fmt.Errorf("page did not go idle within %s: %w", timeout, err)
	}
	return nil
}

// stopLoading uses the page without the request context so it still
// works after the deadline.
func (p *rodPage) stopLoading() {
	if err := p.page.StopLoading(); err != nil {
		slog.Debug("stop loading failed", "error", err)
	}
}

func (p *rodPage) Title(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(jsTitle)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *rodPage) Description(ctx context.Context) (string, bool, error) {
	res, err := p.page.Context(ctx).Eval(jsDescription)
	if err != nil {
		return "", false, err
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

func (p *rodPage) Texts(ctx context.Context, selector string) ([]string, error) {
	res, err := p.page.Context(ctx).Eval(jsTexts, selector)
	if err != nil {
		return nil, err
	}
	var texts []string
	if err := decode(res.Value, "texts for "+selector, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func (p *rodPage) Interactive(ctx context.Context, selector string) ([]cleaner.InteractiveElement, error) {
	res, err := p.page.Context(ctx).Eval(jsInteractive, selector)
	if err != nil {
		return nil, err
	}
	var elements []cleaner.InteractiveElement
	if err := decode(res.Value, "interactive elements", &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func (p *rodPage) Images(ctx context.Context) ([]models.ImageCandidate, error) {
	res, err := p.page.Context(ctx).Eval(jsImages)
	if err != nil {
		return nil, err
	}
	var images []models.ImageCandidate
	if err := decode(res.Value, "images", &images); err != nil {
		return nil, err
	}
	return images, nil
}

// decode unmarshals an Eval result into dst.
func decode(v gson.JSON, what string, dst any) error {
	if err := v.Unmarshal(dst); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}

// Close stops the hijack router, closes the tab and frees its pool slot.
func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		if p.router != nil {
			_ = p.router.Stop()
		}
		p.closeErr = p.page.Close()
		p.release()
	})
	return p.closeErr
}
