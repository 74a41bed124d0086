package cleaner

import (
	"cmp"
	"slices"

	"github.com/use-agent/webdigest/models"
)

// DefaultImageLimit is the number of images kept when no limit is given.
const DefaultImageLimit = 10

// PickImages ranks image candidates by rendered pixel area and returns the
// largest ones, at most limit (DefaultImageLimit when limit <= 0).
//
// Candidates without src or alt, or with a zero dimension, never rank.
// Equal areas keep their document order.
func PickImages(candidates []models.ImageCandidate, limit int) []models.ImageCandidate {
	if limit <= 0 {
		limit = DefaultImageLimit
	}

	ranked := make([]models.ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Src == "" || c.Alt == "" || c.Width <= 0 || c.Height <= 0 {
			continue
		}
		if c.Area() <= 0 {
			continue
		}
		ranked = append(ranked, c)
	}

	slices.SortStableFunc(ranked, func(a, b models.ImageCandidate) int {
		return cmp.Compare(b.Area(), a.Area())
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
