package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/use-agent/webdigest/models"
)

// Concurrency admits at most limit requests at a time. Requests arriving
// while all slots are taken are rejected with 429 instead of queueing.
func Concurrency(limit int) gin.HandlerFunc {
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(int64(limit))

	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			abort(c, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"too many summaries in progress, retry later")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
