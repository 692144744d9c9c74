package compare

import (
	"sort"

	"github.com/lukman83/dishscout/internal/models"
)

// DefaultPerPage is the page size used when a caller passes none.
const DefaultPerPage = 12

// Page is one slice of the ranked list plus its metadata.
type Page struct {
	Products   []models.OfferGroup
	Pagination models.Pagination
}

// Paginate slices groups into 1-based pages. Pages outside 1..TotalPages
// come back empty; TotalPages is 0 when there are no groups.
func Paginate(groups []models.OfferGroup, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(groups)
	totalPages := (total + perPage - 1) / perPage

	products := []models.OfferGroup{}
	if page >= 1 && page <= totalPages {
		start := (page - 1) * perPage
		end := min(start+perPage, total)
		products = groups[start:end]
	}

	return Page{
		Products: products,
		Pagination: models.Pagination{
			CurrentPage:   page,
			PerPage:       perPage,
			TotalProducts: total,
			TotalPages:    totalPages,
			HasNext:       page < totalPages,
			HasPrev:       page > 1,
		},
	}
}

// Restaurants lists every distinct non-empty restaurant name, sorted.
func Restaurants(products []models.RawProduct) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, p := range products {
		if p.RestaurantName == "" {
			continue
		}
		if _, ok := seen[p.RestaurantName]; ok {
			continue
		}
		seen[p.RestaurantName] = struct{}{}
		names = append(names, p.RestaurantName)
	}
	sort.Strings(names)
	return names
}
