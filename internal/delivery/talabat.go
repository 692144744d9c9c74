package delivery

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lukman83/dishscout/internal/httputil"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

const (
	talabatEndpoint   = "https://www.talabat.com/nextSearchApi/v3/vendor"
	talabatOrigin     = "https://www.talabat.com"
	talabatRestImages = "https://images.deliveryhero.io/image/talabat/restaurants/"
	talabatProdImages = "https://images.deliveryhero.io/image/talabat/products/"
	talabatLimit      = 150
	talabatDefaultETA = 30
)

// talabatMarket is one Talabat country storefront.
type talabatMarket struct {
	countryID int
	path      string // storefront path segment, "qatar" or "saudi"
}

var (
	talabatQatar = talabatMarket{countryID: 6, path: "qatar"}
	talabatSaudi = talabatMarket{countryID: 1, path: "saudi"}
)

// NewTalabat returns the Talabat Qatar adapter.
func NewTalabat(opts Options) *Adapter {
	return newTalabat("talabat", "Talabat", talabatQatar, opts)
}

// NewTalabatSA returns the Talabat Saudi Arabia adapter. Its products are
// stamped "Talabat SA" so they never merge with Qatar listings.
func NewTalabatSA(opts Options) *Adapter {
	return newTalabat("talabat-sa", "Talabat SA", talabatSaudi, opts)
}

func newTalabat(name, source string, market talabatMarket, opts Options) *Adapter {
	endpoint := firstString(opts.Endpoint, talabatEndpoint)
	return newAdapter(name, source, opts, func(req platform.Request) (platform.Call, error) {
		return market.call(endpoint, req)
	}, market.parse)
}

type talabatSort struct {
	By    string `json:"by"`
	Order string `json:"order"`
}

type talabatRequest struct {
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Query       string      `json:"query"`
	VerticalIDs []int       `json:"vertical_ids"`
	Limit       int         `json:"limit"`
	CountryID   int         `json:"country_id"`
	PageNumber  int         `json:"page_number"`
	Sort        talabatSort `json:"sort"`
}

func (m talabatMarket) call(endpoint string, req platform.Request) (platform.Call, error) {
	body, err := json.Marshal(talabatRequest{
		Latitude:    req.Lat,
		Longitude:   req.Lon,
		Query:       req.Query,
		VerticalIDs: []int{0, 1, 2, 3, 4, 5, 6},
		Limit:       talabatLimit,
		CountryID:   m.countryID,
		Sort:        talabatSort{By: "RELEVANCE", Order: "ASC"},
	})
	if err != nil {
		return platform.Call{}, err
	}

	storefront := talabatOrigin + "/" + m.path
	h := httputil.JSONHeaders(talabatOrigin, storefront)
	h.Set("User-Agent", defaultUserAgent)
	h.Set("Appbrand", "1")
	h.Set("Sourceapp", "web")
	h.Set("X-Device-Source", "0")

	return platform.Call{Method: http.MethodPost, URL: endpoint, Header: h, Body: body, Origin: storefront}, nil
}

type talabatResponse struct {
	Result struct {
		Vendors []talabatVendor `json:"vendors"`
	} `json:"result"`
	Vendors []talabatVendor `json:"vendors"`
}

type talabatVendor struct {
	VendorName   string           `json:"vendor_name"`
	Name         string           `json:"name"`
	VendorID     loose            `json:"vendor_id"`
	ID           loose            `json:"id"`
	VendorImage  string           `json:"vendor_image"`
	Logo         string           `json:"logo"`
	TotalRatings loose            `json:"total_ratings"`
	Rating       loose            `json:"rating"`
	PickupTime   loose            `json:"pickup_time"`
	DeliveryTime loose            `json:"delivery_time"`
	Products     []talabatProduct `json:"products"`
}

type talabatProduct struct {
	Name  string `json:"name"`
	Price loose  `json:"price"`
	Image string `json:"image"`
}

func (m talabatMarket) parse(body []byte) ([]models.RawProduct, error) {
	var resp talabatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	vendors := resp.Result.Vendors
	if len(vendors) == 0 {
		vendors = resp.Vendors
	}

	var products []models.RawProduct
	for _, v := range vendors {
		name := firstString(v.VendorName, v.Name)
		id := first(v.VendorID, v.ID).String()
		image := withPrefix(talabatRestImages, firstString(v.VendorImage, v.Logo))
		rating := talabatRating(first(v.TotalRatings, v.Rating))
		eta, etaMinutes := talabatETA(first(v.PickupTime, v.DeliveryTime))
		// Talabat has no product pages; products link to the restaurant menu.
		restaurantURL := talabatOrigin + "/" + m.path + "/restaurant/" + id + "/" +
			strings.ReplaceAll(strings.ToLower(name), " ", "-") + "?aid=3855"

		for _, p := range v.Products {
			products = append(products, models.RawProduct{
				ProductName:      p.Name,
				ProductPrice:     price(p.Price),
				ProductImage:     models.Link(withPrefix(talabatProdImages, p.Image)),
				ProductURL:       models.Link(restaurantURL),
				RestaurantName:   name,
				RestaurantImage:  models.Link(image),
				RestaurantRating: rating,
				RestaurantETA:    eta,
				ETAMinutes:       etaMinutes,
			})
		}
	}
	return products, nil
}

// talabatRating reads the vendor score. String scores are scaled from their
// first two digits, so "45" is 4.5.
func talabatRating(v loose) models.Rating {
	if !v.set() {
		return models.Rating{}
	}
	if v.isNum {
		return models.RatingOf(v.num)
	}
	if len(v.text) < 2 {
		return models.ParseRating(v.text)
	}
	n, ok := parseLeadingInt(v.text[:2])
	if !ok {
		return models.Rating{}
	}
	return models.RatingOf(float64(n) / 10)
}

func talabatETA(v loose) (string, int) {
	if !v.set() {
		return "30 mins", talabatDefaultETA
	}
	n, ok := v.Int()
	if !ok {
		return v.String() + " mins", models.UnknownETA
	}
	return v.String() + " mins", n
}

// withPrefix turns a CDN-relative image path into an absolute URL.
func withPrefix(prefix, image string) string {
	if image == "" || strings.HasPrefix(image, "http") {
		return image
	}
	return prefix + image
}
