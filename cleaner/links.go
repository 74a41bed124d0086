package cleaner

import (
	"regexp"
	"strings"

	"github.com/use-agent/webdigest/models"
)

// DefaultLinkLimit is the number of links kept when no limit is given.
const DefaultLinkLimit = 15

// InteractiveSelector matches every element HarvestLinks understands.
const InteractiveSelector = "a, button, [onclick], [data-link]"

// InteractiveElement is the read-only view of an anchor, button or any
// element carrying a click handler or a data-link attribute.
type InteractiveElement struct {
	Tag string `json:"tag"` // lowercase tag name

	Href     string `json:"href"`     // resolved href, anchors only
	DataLink string `json:"dataLink"` // data-link attribute

	// ClickHandler is the source of the element's onclick property,
	// OnClick the raw onclick attribute.
	ClickHandler string `json:"clickHandler"`
	OnClick      string `json:"onclick"`

	Text      string `json:"text"` // visible text
	Title     string `json:"title"`
	AriaLabel string `json:"ariaLabel"`
}

// urlPattern finds literal absolute URLs inside handler source. It only sees
// URLs written out verbatim; anything built at runtime is invisible to it.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>()]+`)

// ResolveURL returns the element's link target, or "" when it has none.
//
// Precedence: anchor href, data-link, URL in the click handler body,
// URL in the onclick attribute.
func (e InteractiveElement) ResolveURL() string {
	if e.Tag == "a" {
		if href := strings.TrimSpace(e.Href); href != "" {
			return href
		}
	}
	if link := strings.TrimSpace(e.DataLink); link != "" {
		return link
	}
	if m := urlPattern.FindString(e.ClickHandler); m != "" {
		return m
	}
	if m := urlPattern.FindString(e.OnClick); m != "" {
		return m
	}
	return ""
}

// Label returns the human label for the element, falling back from visible
// text to the title and aria-label attributes and finally to url.
func (e InteractiveElement) Label(url string) string {
	for _, s := range []string{e.Text, e.Title, e.AriaLabel} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return url
}

// HarvestLinks resolves links from interactive elements in document order,
// dropping elements without a URL, and returns at most limit candidates
// (DefaultLinkLimit when limit <= 0).
func HarvestLinks(elements []InteractiveElement, limit int) []models.LinkCandidate {
	if limit <= 0 {
		limit = DefaultLinkLimit
	}

	links := make([]models.LinkCandidate, 0, min(len(elements), limit))
	for _, el := range elements {
		if len(links) == limit {
			break
		}
		url := el.ResolveURL()
		if url == "" {
			continue
		}
		links = append(links, models.LinkCandidate{URL: url, Label: el.Label(url)})
	}
	return links
}
