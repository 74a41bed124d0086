package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webdigest/models"
)

// Lister reads every persisted summary.
type Lister interface {
	FindAll(ctx context.Context) ([]*models.PersistedSummary, error)
}

// Summaries returns a handler for GET /api/v1/summaries.
func Summaries(store Lister) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := store.FindAll(c.Request.Context())
		if err != nil {
			de := models.AsDigestError(err)
			c.JSON(StatusFor(de.Code), models.SummariesResponse{
				Success:   false,
				Summaries: []*models.PersistedSummary{},
				Error:     de.ToDetail(),
			})
			return
		}
		if summaries == nil {
			summaries = []*models.PersistedSummary{}
		}

		c.JSON(http.StatusOK, models.SummariesResponse{
			Success:   true,
			Total:     len(summaries),
			Summaries: summaries,
		})
	}
}
