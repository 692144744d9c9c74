package models

// UnknownETA is the eta_minutes value adapters report when a platform
// does not expose a usable delivery estimate.
const UnknownETA = 999

// RawProduct is one item exactly as a single platform adapter reported it.
type RawProduct struct {
	Source           string   `json:"source"`
	ProductName      string   `json:"product_name"`
	ProductPrice     *float64 `json:"product_price"`
	ProductImage     Link     `json:"product_image"`
	ProductURL       Link     `json:"product_url"`
	RestaurantName   string   `json:"restaurant_name"`
	RestaurantImage  Link     `json:"restaurant_image"`
	RestaurantRating Rating   `json:"restaurant_rating"`
	RestaurantETA    string   `json:"restaurant_eta"`
	ETAMinutes       int      `json:"eta_minutes"`
}

// Variant is one platform's offer inside an OfferGroup.
type Variant struct {
	Source           string   `json:"source"`
	Price            *float64 `json:"price"`
	ProductURL       Link     `json:"product_url"`
	ProductImage     Link     `json:"product_image"`
	RestaurantRating Rating   `json:"restaurant_rating"`
	RestaurantETA    string   `json:"restaurant_eta"`
	ETAMinutes       int      `json:"eta_minutes"`
	IsLowest         bool     `json:"is_lowest"`
}

// OfferGroup is the same item from the same restaurant across platforms.
type OfferGroup struct {
	ProductName     string    `json:"product_name"`
	RestaurantName  string    `json:"restaurant_name"`
	RestaurantImage Link      `json:"restaurant_image"`
	ProductImage    Link      `json:"product_image"`
	Variants        []Variant `json:"variants"`
	LowestPrice     *float64  `json:"lowest_price"`
	PlatformCount   int       `json:"platform_count"`
	HasComparison   bool      `json:"has_comparison"`
}

// Sort keys accepted by SearchRequest.Sort.
const (
	SortPrice    = "price"
	SortDistance = "distance"
)

// SearchRequest carries everything a caller can ask of the search pipeline.
type SearchRequest struct {
	Term             string   `json:"term" validate:"required"`
	Lat              float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon              float64  `json:"lon" validate:"gte=-180,lte=180"`
	Sort             string   `json:"sort,omitempty" validate:"omitempty,oneof=price distance"`
	Page             int      `json:"page,omitempty" validate:"gte=0"`
	Platforms        []string `json:"platforms,omitempty"`
	Country          string   `json:"country,omitempty" validate:"omitempty,len=2"`
	PriceMin         *float64 `json:"price_min,omitempty" validate:"omitempty,gte=0"`
	PriceMax         *float64 `json:"price_max,omitempty" validate:"omitempty,gte=0"`
	TimeMin          *int     `json:"time_min,omitempty" validate:"omitempty,gte=0"`
	TimeMax          *int     `json:"time_max,omitempty" validate:"omitempty,gte=0"`
	RestaurantFilter string   `json:"restaurant_filter,omitempty"`
}

// Pagination describes where a page sits in the full ranked list.
type Pagination struct {
	CurrentPage   int  `json:"current_page"`
	PerPage       int  `json:"per_page"`
	TotalProducts int  `json:"total_products"`
	TotalPages    int  `json:"total_pages"`
	HasNext       bool `json:"has_next"`
	HasPrev       bool `json:"has_prev"`
}

// SearchResult is one page of ranked offer groups.
type SearchResult struct {
	Term           string       `json:"term"`
	Country        string       `json:"country"`
	Platforms      []string     `json:"platforms"`
	Products       []OfferGroup `json:"products"`
	Pagination     Pagination   `json:"pagination"`
	AllRestaurants []string     `json:"all_restaurants"`
}

// Validation is the outcome of probing a query against the reference platform.
type Validation struct {
	Validated   bool   `json:"validated"`
	ResultCount int    `json:"result_count"`
	Query       string `json:"query,omitempty"`
}

// Price returns a pointer to v, for building known prices.
func Price(v float64) *float64 {
	return &v
}
