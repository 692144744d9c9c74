package compare

import (
	"strings"

	"github.com/lukman83/dishscout/internal/models"
)

// Criteria narrows a raw product list. Nil bounds and empty lists are ignored.
type Criteria struct {
	PriceMin         *float64
	PriceMax         *float64
	TimeMin          *int
	TimeMax          *int
	RestaurantFilter string
	// Sources are the allowed product source labels, matched case-insensitively.
	Sources []string
}

// Filter returns the products matching c, in their original order.
//
// A product with an unknown price always passes the price bounds. ETA bounds
// have no such exception: the UnknownETA sentinel is compared like any value.
func Filter(products []models.RawProduct, c Criteria) []models.RawProduct {
	var allowed map[string]struct{}
	if len(c.Sources) > 0 {
		allowed = make(map[string]struct{}, len(c.Sources))
		for _, s := range c.Sources {
			allowed[strings.ToLower(s)] = struct{}{}
		}
	}
	restaurant := strings.ToLower(strings.TrimSpace(c.RestaurantFilter))

	out := make([]models.RawProduct, 0, len(products))
	for _, p := range products {
		if allowed != nil {
			if _, ok := allowed[strings.ToLower(p.Source)]; !ok {
				continue
			}
		}
		if p.ProductPrice != nil {
			if c.PriceMin != nil && *p.ProductPrice < *c.PriceMin {
				continue
			}
			if c.PriceMax != nil && *p.ProductPrice > *c.PriceMax {
				continue
			}
		}
		if c.TimeMin != nil && p.ETAMinutes < *c.TimeMin {
			continue
		}
		if c.TimeMax != nil && p.ETAMinutes > *c.TimeMax {
			continue
		}
		if restaurant != "" && !strings.Contains(strings.ToLower(p.RestaurantName), restaurant) {
			continue
		}
		out = append(out, p)
	}
	return out
}
