package htmlpage_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/webdigest/cleaner"
	"github.com/use-agent/webdigest/config"
	"github.com/use-agent/webdigest/htmlpage"
	"github.com/use-agent/webdigest/models"
)

const fixture = `<!doctype html>
<html>
<head>
  <title> Example Domain </title>
  <meta name="description" content="Just an example.">
  <style>h1 { color: red }</style>
</head>
<body>
  <h1>Hello   World</h1>
  <h2>Second <em>heading</em></h2>
  <p>First paragraph.</p>
  <p>   </p>
  <ul><li>one</li><li>two</li></ul>
  <div>Block <span>inline</span><script>var x = 1;</script></div>
  <a href="/about" title="About us">About</a>
  <button onclick="location.href='https://example.com/go'">Go</button>
  <span data-link="https://example.com/data">Data</span>
  <img src="/hero.png" alt="Hero" width="640" height="480">
  <img src="icon.svg" alt="Icon" width="16px" height="16px">
  <img src="/nosize.png" alt="No size">
</body>
</html>`

func loadFixture(t *testing.T) *htmlpage.Page {
	t.Helper()
	p, err := htmlpage.FromHTML("https://example.com/docs/", fixture)
	require.NoError(t, err)
	return p
}

func TestPage_TitleAndDescription(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := loadFixture(t)

	title, err := p.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", title)

	desc, found, err := p.Description(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Just an example.", desc)
}

func TestPage_MissingDescription(t *testing.T) {
	t.Parallel()

	p, err := htmlpage.FromHTML("https://example.com", "<html><body><h1>Hello World</h1></body></html>")
	require.NoError(t, err)

	desc, found, err := p.Description(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, desc)

	headings, err := p.Texts(context.Background(), "h1, h2, h3, h4, h5, h6")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World"}, headings)
}

func TestPage_Texts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := loadFixture(t)

	headings, err := p.Texts(ctx, "h1, h2, h3, h4, h5, h6")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World", "Second heading"}, headings)

	paragraphs, err := p.Texts(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"First paragraph."}, paragraphs, "whitespace-only paragraphs are dropped")

	lists, err := p.Texts(ctx, "ul, ol")
	require.NoError(t, err)
	assert.Equal(t, []string{"one\ntwo"}, lists)

	raw, err := p.Texts(ctx, "div, span")
	require.NoError(t, err)
	assert.Equal(t, []string{"Block inline", "inline", "Data"}, raw)
}

func TestPage_InvalidSelector(t *testing.T) {
	t.Parallel()

	_, err := loadFixture(t).Texts(context.Background(), "h1[")
	assert.Error(t, err)
}

func TestPage_Interactive(t *testing.T) {
	t.Parallel()

	elements, err := loadFixture(t).Interactive(context.Background(), cleaner.InteractiveSelector)
	require.NoError(t, err)
	require.Len(t, elements, 3)

	assert.Equal(t, "a", elements[0].Tag)
	assert.Equal(t, "https://example.com/about", elements[0].Href)
	assert.Equal(t, "About us", elements[0].Title)

	assert.Equal(t, "button", elements[1].Tag)
	assert.Empty(t, elements[1].Href)
	assert.Contains(t, elements[1].OnClick, "https://example.com/go")

	assert.Equal(t, "https://example.com/data", elements[2].DataLink)

	links := cleaner.HarvestLinks(elements, 15)
	assert.Equal(t, []models.LinkCandidate{
		{URL: "https://example.com/about", Label: "About"},
		{URL: "https://example.com/go", Label: "Go"},
		{URL: "https://example.com/data", Label: "Data"},
	}, links)
}

func TestPage_Images(t *testing.T) {
	t.Parallel()

	images, err := loadFixture(t).Images(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.ImageCandidate{
		{Src: "https://example.com/hero.png", Alt: "Hero", Width: 640, Height: 480},
		{Src: "https://example.com/docs/icon.svg", Alt: "Icon", Width: 16, Height: 16},
		{Src: "https://example.com/nosize.png", Alt: "No size"},
	}, images)
}

func TestPage_NotLoaded(t *testing.T) {
	t.Parallel()

	p := htmlpage.New(nil)
	_, err := p.Title(context.Background())
	assert.ErrorIs(t, err, htmlpage.ErrNotLoaded)
}

func TestSource_NavigateAndRelease(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixture)
	}))
	defer srv.Close()

	src := htmlpage.NewSource(config.BrowserConfig{MaxPages: 1})
	defer src.Close()
	ctx := context.Background()

	page, err := src.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Stats().ActivePages)

	require.NoError(t, page.Navigate(ctx, srv.URL, 5*time.Second))
	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", title)

	assert.Error(t, page.Navigate(ctx, srv.URL+"/missing", 5*time.Second))

	// The only slot is taken.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = src.Acquire(short)
	assert.Equal(t, models.ErrCodeBrowser, models.ErrorCode(err))

	require.NoError(t, page.Close())
	require.NoError(t, page.Close())
	assert.Equal(t, 0, src.Stats().ActivePages)

	again, err := src.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
