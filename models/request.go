package models

// SummarizeRequest is the payload for POST /api/v1/summarize.
type SummarizeRequest struct {
	// URL is the target page to summarize. Required; an empty value is
	// rejected with MISSING_URL before any browser page is acquired.
	URL string `json:"url" binding:"omitempty,url"`

	// MaxAge enables the response cache: a cached summary younger than
	// MaxAge milliseconds is returned instead of running the pipeline.
	// Default: 0 (no caching).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}
