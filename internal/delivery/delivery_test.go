package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
)

const snoonuFixture = `{
  "data": {
    "merchants": [
      {
        "name": "Shawarma Spot",
        "image_url": "https://cdn.snoonu.com/m/1.png",
        "rating": 4.6,
        "time_value": "25",
        "time_unit": "min",
        "products": [
          {"name": "Chicken Shawarma", "price": "14", "price_without_discount": "18", "image_url": "https://cdn.snoonu.com/p/1.png"},
          {"name": "Falafel Wrap", "price": 9.5}
        ]
      },
      {
        "name": "Late Kitchen",
        "time_value": "1",
        "time_unit": "Hour",
        "rating": "N/A",
        "products": [{"name": "Mac & Cheese", "price": "abc"}]
      },
      {
        "name": "No Eta",
        "products": [{"name": "Tea", "price": 0}]
      }
    ]
  }
}`

func TestSnoonu_Search(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, snoonuFixture)
	}))
	defer srv.Close()

	a := NewSnoonu(Options{Client: srv.Client(), Endpoint: srv.URL + "/api/v5/search/global"})
	products := a.Search(context.Background(), "chicken shawarma", 25.2855, 51.5314)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "chicken shawarma", got.URL.Query().Get("term"))
	assert.Equal(t, "150", got.URL.Query().Get("page_size"))
	assert.Equal(t, "62", got.URL.Query().Get("category_id"))
	assert.Equal(t, "25.2855", got.Header.Get("Latitude"))
	assert.Equal(t, "51.5314", got.Header.Get("Longitude"))
	assert.Equal(t, "Web", got.Header.Get("Snoonu-App-Platform"))
	assert.True(t, strings.HasPrefix(got.Header.Get("Deviceid"), "web-"))

	require.Len(t, products, 4)
	for _, p := range products {
		assert.Equal(t, "Snoonu", p.Source)
	}

	shawarma := products[0]
	assert.Equal(t, "Chicken Shawarma", shawarma.ProductName)
	require.NotNil(t, shawarma.ProductPrice)
	assert.Equal(t, 18.0, *shawarma.ProductPrice, "list price wins over discounted price")
	assert.Equal(t, "25 min", shawarma.RestaurantETA)
	assert.Equal(t, 25, shawarma.ETAMinutes)
	assert.Equal(t, models.RatingOf(4.6), shawarma.RestaurantRating)
	assert.Equal(t, models.Link("https://snoonu.com/search?q=Chicken%20Shawarma%20Shawarma%20Spot"), shawarma.ProductURL)

	assert.Equal(t, 9.5, *products[1].ProductPrice)

	late := products[2]
	assert.Nil(t, late.ProductPrice)
	assert.Equal(t, 60, late.ETAMinutes)
	assert.False(t, late.RestaurantRating.Known)
	assert.Equal(t, models.Link("https://snoonu.com/search?q=Mac%20%26%20Cheese%20Late%20Kitchen"), late.ProductURL)

	assert.Equal(t, models.UnknownETA, products[3].ETAMinutes)
	assert.Nil(t, products[3].ProductPrice)
}

const talabatFixture = `{
  "result": {
    "vendors": [
      {
        "vendor_name": "Burger House",
        "vendor_id": 4521,
        "vendor_image": "burger-house.jpg",
        "total_ratings": "45",
        "pickup_time": 20,
        "products": [
          {"name": "Classic Burger", "price": 22.5, "image": "classic.jpg"},
          {"name": "Fries", "image": "https://cdn.example/fries.jpg"}
        ]
      },
      {
        "name": "Pizza Co",
        "id": "77",
        "logo": "https://cdn.example/pizza.png",
        "rating": 4.2,
        "products": [{"name": "Margherita", "price": "35"}]
      }
    ]
  }
}`

func TestTalabat_Search(t *testing.T) {
	var body map[string]any
	var referer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, talabatFixture)
	}))
	defer srv.Close()

	tests := []struct {
		name      string
		adapter   *Adapter
		source    string
		countryID float64
		path      string
	}{
		{name: "qatar", adapter: NewTalabat(Options{Client: srv.Client(), Endpoint: srv.URL}), source: "Talabat", countryID: 6, path: "qatar"},
		{name: "saudi", adapter: NewTalabatSA(Options{Client: srv.Client(), Endpoint: srv.URL}), source: "Talabat SA", countryID: 1, path: "saudi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := tt.adapter.Search(context.Background(), "burger", 25.3, 51.5)

			assert.Equal(t, "burger", body["query"])
			assert.Equal(t, tt.countryID, body["country_id"])
			assert.Equal(t, 150.0, body["limit"])
			assert.Equal(t, "https://www.talabat.com/"+tt.path, referer)

			require.Len(t, products, 3)
			burger := products[0]
			assert.Equal(t, tt.source, burger.Source)
			assert.Equal(t, 22.5, *burger.ProductPrice)
			assert.Equal(t, models.Link("https://images.deliveryhero.io/image/talabat/products/classic.jpg"), burger.ProductImage)
			assert.Equal(t, models.Link("https://images.deliveryhero.io/image/talabat/restaurants/burger-house.jpg"), burger.RestaurantImage)
			assert.Equal(t, models.RatingOf(4.5), burger.RestaurantRating)
			assert.Equal(t, "20 mins", burger.RestaurantETA)
			assert.Equal(t, 20, burger.ETAMinutes)
			assert.Equal(t, models.Link("https://www.talabat.com/"+tt.path+"/restaurant/4521/burger-house?aid=3855"), burger.ProductURL)

			fries := products[1]
			assert.Nil(t, fries.ProductPrice)
			assert.Equal(t, models.Link("https://cdn.example/fries.jpg"), fries.ProductImage)

			pizza := products[2]
			assert.Equal(t, "Pizza Co", pizza.RestaurantName)
			assert.Equal(t, models.RatingOf(4.2), pizza.RestaurantRating)
			assert.Equal(t, "30 mins", pizza.RestaurantETA)
			assert.Equal(t, 30, pizza.ETAMinutes)
			assert.Equal(t, 35.0, *pizza.ProductPrice)
		})
	}
}

const rafeeqFixture = `{
  "data": {
    "items": [
      {
        "name_english": "Karak Corner",
        "image": "https://cdn.rafeeq/k.png",
        "rating": 4.8,
        "eta": "15 - 25 mins",
        "products": [
          {"name_english": "Karak Tea", "product_price": 3, "product_img": "https://cdn.rafeeq/t.png",
           "share_product_message": "Try Karak Tea on Rafeeq! https://gorafeeq.page.link/abc123 now"}
        ]
      },
      {
        "name": "مطعم",
        "products": [{"name": "Hummus"}]
      }
    ]
  }
}`

func TestRafeeq_Search(t *testing.T) {
	var env map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&env)
		_, _ = io.WriteString(w, rafeeqFixture)
	}))
	defer srv.Close()

	products := NewRafeeq(Options{Client: srv.Client(), Endpoint: srv.URL}).Search(context.Background(), "karak", 25.28, 51.53)

	assert.Equal(t, "customer/v2/search", env["endpoint"])
	payload := env["payload"].(map[string]any)
	assert.Equal(t, "karak", payload["search"])
	assert.Equal(t, "QAR", payload["currency_code"])
	assert.Nil(t, payload["location_id"])

	require.Len(t, products, 2)
	karak := products[0]
	assert.Equal(t, "Rafeeq", karak.Source)
	assert.Equal(t, "Karak Tea", karak.ProductName)
	assert.Equal(t, 3.0, *karak.ProductPrice)
	assert.Equal(t, models.Link("https://gorafeeq.page.link/abc123"), karak.ProductURL)
	assert.Equal(t, "15 - 25 mins", karak.RestaurantETA)
	assert.Equal(t, 15, karak.ETAMinutes)
	assert.Equal(t, models.RatingOf(4.8), karak.RestaurantRating)

	hummus := products[1]
	assert.Equal(t, "مطعم", hummus.RestaurantName)
	assert.Nil(t, hummus.ProductPrice)
	assert.Empty(t, hummus.ProductURL)
	assert.Equal(t, "30 mins", hummus.RestaurantETA)
	assert.Equal(t, 30, hummus.ETAMinutes)
	assert.False(t, hummus.RestaurantRating.Known)
}

func TestAdapter_FailuresBecomeEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{name: "forbidden", handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) }},
		{name: "html challenge", handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "<html>captcha</html>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.Empty(t, NewRafeeq(Options{Client: srv.Client(), Endpoint: srv.URL}).Search(context.Background(), "x", 0, 0))
		})
	}
}

func TestAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	start := time.Now()
	got := NewSnoonu(Options{Client: srv.Client(), Endpoint: srv.URL, Timeout: 30 * time.Millisecond}).Search(context.Background(), "x", 0, 0)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

type fakeStrategy struct {
	body  string
	err   error
	calls int
	call  platform.Call
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Execute(_ context.Context, call platform.Call) ([]byte, error) {
	f.calls++
	f.call = call
	return []byte(f.body), f.err
}

func TestAdapter_FallsBackToSecondStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	fallback := &fakeStrategy{body: rafeeqFixture}
	var progress []string
	ctx := platform.WithProgress(context.Background(), func(msg string) { progress = append(progress, msg) })

	products := NewRafeeq(Options{Client: srv.Client(), Endpoint: srv.URL, Headless: fallback}).Search(ctx, "karak", 0, 0)
	assert.Len(t, products, 2)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "https://www.gorafeeq.com/", fallback.call.Origin)
	assert.Equal(t, []string{"Rafeeq: trying fake"}, progress)
}

func TestAdapter_FallbackNotUsedOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"items": []}`)
	}))
	defer srv.Close()

	fallback := &fakeStrategy{err: errors.New("should not run")}
	products := NewRafeeq(Options{Client: srv.Client(), Endpoint: srv.URL, Headless: fallback}).Search(context.Background(), "x", 0, 0)
	assert.Empty(t, products)
	assert.Zero(t, fallback.calls)
}

func TestFetchInit_DropsBrowserControlledHeaders(t *testing.T) {
	call, err := talabatQatar.call(talabatEndpoint, platform.Request{Query: "burger"})
	require.NoError(t, err)

	opts := fetchInit(call)
	headers := opts["headers"].(map[string]string)
	assert.Equal(t, "1", headers["Appbrand"])
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.NotContains(t, headers, "User-Agent")
	assert.NotContains(t, headers, "Origin")
	assert.NotContains(t, headers, "Sec-Fetch-Mode")
	assert.Equal(t, http.MethodPost, opts["method"])
	assert.Contains(t, opts["body"], `"query":"burger"`)
}

func TestDecodeFetchResult(t *testing.T) {
	body, err := decodeFetchResult(`{"status":200,"body":"{\"items\":[]}"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(body))

	_, err = decodeFetchResult(`{"status":403,"body":"denied"}`)
	assert.Error(t, err)

	_, err = decodeFetchResult(`not json`)
	assert.Error(t, err)
}

func TestLoose(t *testing.T) {
	var v struct {
		A, B, C, D, E loose
	}
	require.NoError(t, json.Unmarshal([]byte(`{"A": "12.5 QAR", "B": 0, "C": null, "D": "", "E": {"x": 1}}`), &v))

	f, ok := v.A.Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	assert.False(t, v.B.set())
	assert.False(t, v.C.set())
	assert.False(t, v.D.set())
	assert.False(t, v.E.set())
	assert.Equal(t, v.A, first(v.B, v.C, v.A))
	assert.Nil(t, price(v.B))
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "Mac%20%26%20Cheese", encodeComponent("Mac & Cheese"))
	assert.Equal(t, "Joe's%20(Grill)!", encodeComponent("Joe's (Grill)!"))
	assert.Equal(t, "%D8%B4%D8%A7%D9%88%D8%B1%D9%85%D8%A7", encodeComponent("شاورما"))
}

func TestRegisterAll(t *testing.T) {
	reg := platform.NewRegistry()
	var seen []string
	RegisterAll(reg, func(id string) Options {
		seen = append(seen, id)
		return Options{}
	})
	assert.Equal(t, []string{"rafeeq", "snoonu", "talabat", "talabat-sa"}, reg.List())
	assert.Len(t, seen, 4)

	a, err := reg.Get("TALABAT-SA")
	require.NoError(t, err)
	assert.Equal(t, "Talabat SA", a.Source())
}
