// Package digest turns cleaned page signals into the LLM prompt and decodes
// the structured summary that comes back.
package digest

import (
	"strings"

	"github.com/use-agent/webdigest/models"
)

// promptPrefix precedes the digest in the user message.
const promptPrefix = "Please web scrape following website:\n"

// listSeparator joins the entries of a list-valued section.
const listSeparator = ", "

// Digest is the textual payload sent to the summarizer.
type Digest struct {
	URL    string
	Text   string
	Tokens int // estimated token count of Text
}

// Build composes the labeled digest sections, one per line:
//
//	Website: <url>
//	Title: <title>
//	Description: <description>
//	Headings: <h>, <h>, ...
//	Lists: <l>, <l>, ...
//	Raw Text: <t>, <t>, ...
//	Useful Links: <label> - <url>, ...
//	Best Images: image alt - <alt>, image src - <src>, ...
//
// headings, lists and rawText are expected to be cleaned already. Empty
// sections keep their label.
func Build(
	url, title, description string,
	headings, lists, rawText []string,
	links []models.LinkCandidate,
	images []models.ImageCandidate,
) Digest {
	linkLines := make([]string, len(links))
	for i, l := range links {
		linkLines[i] = l.Label + " - " + l.URL
	}
	imageLines := make([]string, len(images))
	for i, img := range images {
		imageLines[i] = "image alt - " + img.Alt + ", image src - " + img.Src
	}

	sections := []string{
		"Website: " + url,
		"Title: " + title,
		"Description: " + description,
		"Headings: " + strings.Join(headings, listSeparator),
		"Lists: " + strings.Join(lists, listSeparator),
		"Raw Text: " + strings.Join(rawText, listSeparator),
		"Useful Links: " + strings.Join(linkLines, listSeparator),
		"Best Images: " + strings.Join(imageLines, listSeparator),
	}
	text := strings.Join(sections, "\n")

	return Digest{URL: url, Text: text, Tokens: EstimateTokens(text)}
}

// Prompt returns the user message for d.
func (d Digest) Prompt() string {
	return promptPrefix + d.Text
}
