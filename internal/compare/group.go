// Package compare turns raw per-platform products into ranked, comparable
// offer groups. Everything here is a pure function over request data.
package compare

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lukman83/dishscout/internal/models"
)

// NormalizeRestaurant is the identity key for a restaurant name.
func NormalizeRestaurant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeProduct is the identity key for a product name within a restaurant.
func NormalizeProduct(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// bucket keeps entries in first-seen order so grouping output is reproducible.
type bucket[T any] struct {
	keys  []string
	items map[string]T
}

func newBucket[T any]() *bucket[T] {
	return &bucket[T]{items: make(map[string]T)}
}

func (b *bucket[T]) get(key string, init func() T) T {
	v, ok := b.items[key]
	if !ok {
		v = init()
		b.items[key] = v
		b.keys = append(b.keys, key)
	}
	return v
}

type productSet struct {
	products []models.RawProduct
}

// Group clusters products into offer groups keyed by (restaurant, product),
// in the order each restaurant and product was first seen. Products whose
// restaurant or product name normalizes to empty are dropped.
func Group(products []models.RawProduct) []models.OfferGroup {
	restaurants := newBucket[*bucket[*productSet]]()
	for _, p := range products {
		rKey := NormalizeRestaurant(p.RestaurantName)
		if rKey == "" {
			continue
		}
		pKey := NormalizeProduct(p.ProductName)
		if pKey == "" {
			continue
		}
		byName := restaurants.get(rKey, newBucket[*productSet])
		set := byName.get(pKey, func() *productSet { return &productSet{} })
		set.products = append(set.products, p)
	}

	var groups []models.OfferGroup
	for _, rKey := range restaurants.keys {
		byName := restaurants.items[rKey]
		for _, pKey := range byName.keys {
			groups = append(groups, buildGroup(byName.items[pKey].products))
		}
	}
	return groups
}

func buildGroup(products []models.RawProduct) models.OfferGroup {
	variants := make([]models.Variant, len(products))
	for i, p := range products {
		variants[i] = models.Variant{
			Source:           p.Source,
			Price:            p.ProductPrice,
			ProductURL:       p.ProductURL,
			ProductImage:     p.ProductImage,
			RestaurantRating: p.RestaurantRating,
			RestaurantETA:    p.RestaurantETA,
			ETAMinutes:       p.ETAMinutes,
		}
	}
	sort.SliceStable(variants, func(i, j int) bool {
		return lessPrice(variants[i].Price, variants[j].Price)
	})

	lowest := variants[0].Price
	if lowest != nil {
		for i := range variants {
			if variants[i].Price != nil && *variants[i].Price == *lowest {
				variants[i].IsLowest = true
			}
		}
	}

	first := products[0]
	return models.OfferGroup{
		ProductName:     representativeName(products),
		RestaurantName:  first.RestaurantName,
		RestaurantImage: first.RestaurantImage,
		ProductImage:    variants[0].ProductImage,
		Variants:        variants,
		LowestPrice:     lowest,
		PlatformCount:   len(variants),
		HasComparison:   len(variants) > 1,
	}
}

// representativeName is the longest original name in characters; the first
// one seen wins ties.
func representativeName(products []models.RawProduct) string {
	name := products[0].ProductName
	longest := utf8.RuneCountInString(name)
	for _, p := range products[1:] {
		if n := utf8.RuneCountInString(p.ProductName); n > longest {
			name, longest = p.ProductName, n
		}
	}
	return name
}

// lessPrice orders known prices ascending with unknown prices last.
func lessPrice(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
