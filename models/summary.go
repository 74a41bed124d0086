package models

import "time"

// SummaryResult is the structured summary returned by the LLM.
// Fields the model could not determine are empty, never null.
type SummaryResult struct {
	Name           string     `json:"name"`
	Summary        string     `json:"summary"`
	Labels         []string   `json:"labels"`
	Images         []ImageRef `json:"images"`
	KeyPoints      []KeyPoint `json:"keyPoints"`
	UsefulLinks    []LinkRef  `json:"usefulLinks"`
	RelatedContent []LinkRef  `json:"relatedContent"`
}

// ImageRef is an image the model considered representative.
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// KeyPoint is a titled fact about the page.
type KeyPoint struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// LinkRef is a titled URL.
type LinkRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PersistedSummary is one stored pipeline result.
type PersistedSummary struct {
	ID          string        `json:"id"`
	WebsiteLink string        `json:"website_link"`
	Result      SummaryResult `json:"result"`

	// Fingerprint is the hex SimHash of the digest sent to the LLM.
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}
