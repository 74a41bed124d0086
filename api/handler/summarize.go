package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webdigest/cache"
	"github.com/use-agent/webdigest/models"
	"github.com/use-agent/webdigest/pipeline"
	"github.com/use-agent/webdigest/webhook"
)

// Runner runs the summarize pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, url string) (*pipeline.Outcome, error)
}

// Summarize returns a handler for POST /api/v1/summarize.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Cache lookup when max_age is set.
//  3. Runner.Run → persisted summary, stats and timing.
//  4. Cache store, webhook notification, return 200.
//
// cc and notifier may be nil.
func Summarize(runner Runner, cc *cache.Cache, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewDigestError(models.ErrCodeInvalidInput, err.Error(), err),
				models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()})
			return
		}

		// ── 2. Cache lookup ─────────────────────────────────────────
		var cacheKey string
		if cc != nil && req.MaxAge > 0 && req.URL != "" {
			cacheKey = cache.Key(req.URL)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		// ── 3. Run ──────────────────────────────────────────────────
		out, err := runner.Run(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err, models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()})
			return
		}

		resp := NewSummarizeResponse(out)

		// ── 4. Cache store & notify ─────────────────────────────────
		if cacheKey != "" {
			cached := *resp
			cc.Set(cacheKey, &cached)
			resp.CacheStatus = "miss"
		}
		notifier.Notify(webhook.SummaryCreated(out.Summary))

		c.JSON(http.StatusOK, resp)
	}
}

// NewSummarizeResponse renders a successful run.
func NewSummarizeResponse(out *pipeline.Outcome) *models.SummarizeResponse {
	summary := out.Summary
	stats := out.Stats
	createdAt := summary.CreatedAt
	return &models.SummarizeResponse{
		Success:     true,
		ID:          summary.ID,
		WebsiteLink: summary.WebsiteLink,
		Result:      &summary.Result,
		CreatedAt:   &createdAt,
		Stats:       &stats,
		Timing:      out.Timing,
	}
}

// respondError maps a DigestError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	de := models.AsDigestError(err)
	c.JSON(StatusFor(de.Code), models.SummarizeResponse{
		Success: false,
		Error:   de.ToDetail(),
		Timing:  timing,
	})
}

// StatusFor translates error codes to HTTP status codes.
func StatusFor(code string) int {
	switch code {
	case models.ErrCodeMissingURL, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeNavigation, models.ErrCodeExtraction, models.ErrCodeSummarization:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowser:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
