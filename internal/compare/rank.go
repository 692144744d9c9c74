package compare

import (
	"sort"

	"github.com/lukman83/dishscout/internal/models"
)

// DistanceMode picks which variant's ETA a "distance" sort uses.
type DistanceMode string

const (
	// DistanceCheapestVariant uses the ETA of the first variant in price order,
	// i.e. the platform with the lowest price, not necessarily the fastest one.
	DistanceCheapestVariant DistanceMode = "cheapest"
	// DistanceFastestVariant uses the smallest ETA across all variants.
	DistanceFastestVariant DistanceMode = "fastest"
)

// Rank orders groups in place by platform coverage (descending), then by the
// sort key. Unknown sort keys apply no secondary ordering.
func Rank(groups []models.OfferGroup, sortBy string, mode DistanceMode) {
	var secondary func(a, b *models.OfferGroup) bool
	switch sortBy {
	case models.SortPrice:
		secondary = func(a, b *models.OfferGroup) bool {
			return lessPrice(a.LowestPrice, b.LowestPrice)
		}
	case models.SortDistance:
		secondary = func(a, b *models.OfferGroup) bool {
			return groupETA(a, mode) < groupETA(b, mode)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := &groups[i], &groups[j]
		if a.PlatformCount != b.PlatformCount {
			return a.PlatformCount > b.PlatformCount
		}
		if secondary == nil {
			return false
		}
		return secondary(a, b)
	})
}

func groupETA(g *models.OfferGroup, mode DistanceMode) int {
	if len(g.Variants) == 0 {
		return models.UnknownETA
	}
	if mode != DistanceFastestVariant {
		return g.Variants[0].ETAMinutes
	}
	eta := g.Variants[0].ETAMinutes
	for _, v := range g.Variants[1:] {
		if v.ETAMinutes < eta {
			eta = v.ETAMinutes
		}
	}
	return eta
}
