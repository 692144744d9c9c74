package delivery

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

const (
	snoonuEndpoint = "https://admin.snoonu.com/api/v5/search/global"
	snoonuOrigin   = "https://snoonu.com"
)

// NewSnoonu returns the Snoonu (Qatar) adapter.
func NewSnoonu(opts Options) *Adapter {
	endpoint := firstString(opts.Endpoint, snoonuEndpoint)
	return newAdapter("snoonu", "Snoonu", opts, func(req platform.Request) (platform.Call, error) {
		return snoonuCall(endpoint, req)
	}, parseSnoonu)
}

func snoonuCall(endpoint string, req platform.Request) (platform.Call, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return platform.Call{}, err
	}
	q := u.Query()
	q.Set("page", "0")
	q.Set("page_size", "150")
	q.Set("product_size", "110")
	q.Set("category_id", "62")
	q.Set("term", req.Query)
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("User-Agent", defaultUserAgent)
	h.Set("Appversion", "3.0.0")
	h.Set("Deviceid", "web-"+uuid.NewString())
	h.Set("Latitude", strconv.FormatFloat(req.Lat, 'f', -1, 64))
	h.Set("Longitude", strconv.FormatFloat(req.Lon, 'f', -1, 64))
	h.Set("Snoonu-App-Platform", "Web")

	return platform.Call{Method: http.MethodGet, URL: u.String(), Header: h, Origin: snoonuOrigin}, nil
}

type snoonuResponse struct {
	Data struct {
		Merchants []snoonuMerchant `json:"merchants"`
	} `json:"data"`
}

type snoonuMerchant struct {
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Rating    loose           `json:"rating"`
	TimeValue loose           `json:"time_value"`
	TimeUnit  string          `json:"time_unit"`
	Products  []snoonuProduct `json:"products"`
}

type snoonuProduct struct {
	Name                 string `json:"name"`
	ImageURL             string `json:"image_url"`
	Price                loose  `json:"price"`
	PriceWithoutDiscount loose  `json:"price_without_discount"`
}

func parseSnoonu(body []byte) ([]models.RawProduct, error) {
	var resp snoonuResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	var products []models.RawProduct
	for _, m := range resp.Data.Merchants {
		eta := strings.TrimSpace(m.TimeValue.String() + " " + m.TimeUnit)
		etaMinutes := snoonuETA(m.TimeValue, m.TimeUnit)
		rating := looseRating(m.Rating)

		for _, p := range m.Products {
			products = append(products, models.RawProduct{
				ProductName: p.Name,
				// list price: the discount is a promotion, not the item's price
				ProductPrice:     price(first(p.PriceWithoutDiscount, p.Price)),
				ProductImage:     models.Link(p.ImageURL),
				ProductURL:       models.Link(snoonuProductURL(p.Name, m.Name)),
				RestaurantName:   m.Name,
				RestaurantImage:  models.Link(m.ImageURL),
				RestaurantRating: rating,
				RestaurantETA:    eta,
				ETAMinutes:       etaMinutes,
			})
		}
	}
	return products, nil
}

// snoonuETA converts "45 min" or "1 hour" into minutes.
func snoonuETA(value loose, unit string) int {
	if !value.set() {
		return models.UnknownETA
	}
	n, ok := value.Int()
	if !ok {
		return models.UnknownETA
	}
	if strings.Contains(strings.ToLower(unit), "hour") {
		return n * 60
	}
	return n
}

// Snoonu has no public product pages, so products link to a site search.
func snoonuProductURL(product, restaurant string) string {
	if product == "" {
		return ""
	}
	return snoonuOrigin + "/search?q=" + encodeComponent(product) + "%20" + encodeComponent(restaurant)
}

func looseRating(v loose) models.Rating {
	if v.isNum {
		return models.RatingOf(v.num)
	}
	return models.ParseRating(v.text)
}
