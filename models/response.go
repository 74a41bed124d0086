package models

import "time"

// SummarizeResponse is the response for POST /api/v1/summarize.
type SummarizeResponse struct {
	// Success indicates whether the run completed without errors.
	Success bool `json:"success"`

	// ID is the identifier of the persisted summary.
	ID string `json:"id,omitempty"`

	// WebsiteLink is the requested URL.
	WebsiteLink string `json:"website_link,omitempty"`

	// Result is the structured summary.
	Result *SummaryResult `json:"result,omitempty"`

	// CreatedAt is when the summary was persisted.
	CreatedAt *time.Time `json:"created_at,omitempty"`

	// Stats describes the signals that went into the digest.
	Stats *DigestStats `json:"stats,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// DigestStats counts the extracted and cleaned signals of one run.
type DigestStats struct {
	NavigationAttempts int `json:"navigation_attempts"`
	Headings           int `json:"headings"`
	Paragraphs         int `json:"paragraphs"`
	Lists              int `json:"lists"`
	RawText            int `json:"raw_text"`
	Links              int `json:"links"`
	Images             int `json:"images"`

	// DigestTokens is the estimated token count of the digest.
	DigestTokens int `json:"digest_tokens"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs covers page acquisition and all navigation attempts.
	NavigationMs int64 `json:"navigation_ms"`

	// ExtractionMs covers DOM queries, cleaning and digest building.
	ExtractionMs int64 `json:"extraction_ms"`

	// SummarizationMs is the time spent waiting for the LLM.
	SummarizationMs int64 `json:"summarization_ms"`
}

// SummariesResponse is the response for GET /api/v1/summaries.
type SummariesResponse struct {
	Success   bool                `json:"success"`
	Total     int                 `json:"total"`
	Summaries []*PersistedSummary `json:"summaries"`
	Error     *ErrorDetail        `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	Mode        string `json:"mode"`
	MaxPages    int    `json:"max_pages"`
	ActivePages int    `json:"active_pages"`
}
