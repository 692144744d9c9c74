package delivery

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/lukman83/dishscout/internal/httputil"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

const (
	rafeeqEndpoint   = "https://www.gorafeeq.com/api/general"
	rafeeqOrigin     = "https://www.gorafeeq.com"
	rafeeqDefaultETA = 30
)

// NewRafeeq returns the Rafeeq (Qatar) adapter.
func NewRafeeq(opts Options) *Adapter {
	endpoint := firstString(opts.Endpoint, rafeeqEndpoint)
	return newAdapter("rafeeq", "Rafeeq", opts, func(req platform.Request) (platform.Call, error) {
		return rafeeqCall(endpoint, req)
	}, parseRafeeq)
}

// Rafeeq's web app tunnels every backend call through one proxy endpoint.
type rafeeqEnvelope struct {
	Payload  rafeeqSearch `json:"payload"`
	Method   string       `json:"method"`
	Endpoint string       `json:"endpoint"`
}

type rafeeqSearch struct {
	Search             string  `json:"search"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	ItsFromLandingPage bool    `json:"its_from_landing_page"`
	CountryCode        int     `json:"country_code"`
	CurrencyCode       string  `json:"currency_code"`
	AppVersion         string  `json:"AppVersion"`
	LanguageID         int     `json:"language_id"`
	LocationID         *int    `json:"location_id"`
	PlatformID         int     `json:"platform_id"`
}

func rafeeqCall(endpoint string, req platform.Request) (platform.Call, error) {
	body, err := json.Marshal(rafeeqEnvelope{
		Payload: rafeeqSearch{
			Search:             req.Query,
			Latitude:           req.Lat,
			Longitude:          req.Lon,
			ItsFromLandingPage: true,
			CountryCode:        1,
			CurrencyCode:       "QAR",
			AppVersion:         "3.4.24",
			PlatformID:         1,
		},
		Method:   http.MethodPost,
		Endpoint: "customer/v2/search",
	})
	if err != nil {
		return platform.Call{}, err
	}

	h := httputil.JSONHeaders(rafeeqOrigin, rafeeqOrigin+"/")
	h.Set("User-Agent", defaultUserAgent)
	return platform.Call{Method: http.MethodPost, URL: endpoint, Header: h, Body: body, Origin: rafeeqOrigin + "/"}, nil
}

type rafeeqResponse struct {
	Items []rafeeqItem `json:"items"`
	Data  struct {
		Items []rafeeqItem `json:"items"`
	} `json:"data"`
}

type rafeeqItem struct {
	NameEnglish string          `json:"name_english"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Rating      loose           `json:"rating"`
	ETA         loose           `json:"eta"`
	Products    []rafeeqProduct `json:"products"`
}

type rafeeqProduct struct {
	NameEnglish         string `json:"name_english"`
	Name                string `json:"name"`
	ProductPrice        loose  `json:"product_price"`
	ProductImg          string `json:"product_img"`
	ShareProductMessage string `json:"share_product_message"`
}

var shareURL = regexp.MustCompile(`https://\S+`)

func parseRafeeq(body []byte) ([]models.RawProduct, error) {
	var resp rafeeqResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	items := resp.Items
	if len(items) == 0 {
		items = resp.Data.Items
	}

	var products []models.RawProduct
	for _, it := range items {
		name := firstString(it.NameEnglish, it.Name)
		rating := models.Rating{}
		if it.Rating.set() {
			rating = looseRating(it.Rating)
		}
		eta := "30 mins"
		if it.ETA.set() {
			eta = it.ETA.String()
		}
		etaMinutes, ok := parseLeadingInt(eta)
		if !ok || etaMinutes == 0 {
			etaMinutes = rafeeqDefaultETA
		}

		for _, p := range it.Products {
			products = append(products, models.RawProduct{
				ProductName:      firstString(p.NameEnglish, p.Name),
				ProductPrice:     price(p.ProductPrice),
				ProductImage:     models.Link(p.ProductImg),
				ProductURL:       models.Link(shareURL.FindString(p.ShareProductMessage)),
				RestaurantName:   name,
				RestaurantImage:  models.Link(it.Image),
				RestaurantRating: rating,
				RestaurantETA:    eta,
				ETAMinutes:       etaMinutes,
			})
		}
	}
	return products, nil
}
