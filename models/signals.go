package models

// PageSignals is the raw structural content pulled from one loaded page.
// Every sequence is already truncated to its configured limit.
type PageSignals struct {
	Title       string
	Description string // empty when the page has no description meta tag
	Headings    []string
	Paragraphs  []string
	Lists       []string
	RawText     []string
	Links       []LinkCandidate
	Images      []ImageCandidate
}

// LinkCandidate is an outbound link resolved from an interactive element.
type LinkCandidate struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// ImageCandidate is an <img> element with its rendered (natural) size.
type ImageCandidate struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Area is the pixel area used for ranking.
func (c ImageCandidate) Area() int {
	return c.Width * c.Height
}
