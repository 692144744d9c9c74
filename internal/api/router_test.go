package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/dishscout/internal/aggregate"
	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/refine"
	"github.com/lukman83/dishscout/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type menuAdapter struct {
	name, source string
	products     []models.RawProduct
}

func (m *menuAdapter) Name() string   { return m.name }
func (m *menuAdapter) Source() string { return m.source }

func (m *menuAdapter) Search(_ context.Context, query string, _, _ float64) []models.RawProduct {
	if !strings.Contains(strings.ToLower(query), "shawarma") {
		return nil
	}
	return append([]models.RawProduct(nil), m.products...)
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	snoonu := &menuAdapter{name: "snoonu", source: "Snoonu", products: []models.RawProduct{
		{Source: "Snoonu", RestaurantName: "Shawarma Spot", ProductName: "Chicken Shawarma", ProductPrice: models.Price(15), ETAMinutes: 25},
		{Source: "Snoonu", RestaurantName: "Grill Town", ProductName: "Beef Shawarma", ProductPrice: models.Price(18), ETAMinutes: 30},
		{Source: "Snoonu", RestaurantName: "Shawarma Spot", ProductName: "Shawarma Plate", ProductPrice: models.Price(22), ETAMinutes: 25},
	}}
	talabat := &menuAdapter{name: "talabat", source: "Talabat", products: []models.RawProduct{
		{Source: "Talabat", RestaurantName: "Shawarma Spot", ProductName: "Chicken Shawarma", ProductPrice: models.Price(13), ETAMinutes: 20},
	}}
	reg := platform.NewRegistry()
	reg.Register(snoonu)
	reg.Register(talabat)

	markets := map[string]search.Market{
		"QA": {Platforms: []string{"snoonu", "talabat"}, Lat: 25.2855, Lon: 51.5314},
	}
	return &app.App{
		Search:   search.New(aggregate.New(reg, aggregate.Options{}, nil), search.Options{DefaultCountry: "QA", Markets: markets}, nil),
		Refiner:  refine.New(snoonu, refine.Options{}, nil),
		Registry: reg,
		Markets:  markets,
	}
}

func do(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSearch(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	w := do(r, http.MethodPost, "/api/search", `{"term":"shawarma"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res models.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "QA", res.Country)
	assert.Equal(t, []string{"snoonu", "talabat"}, res.Platforms)
	require.Len(t, res.Products, 3)
	first := res.Products[0]
	assert.Equal(t, "Chicken Shawarma", first.ProductName)
	assert.Equal(t, 2, first.PlatformCount)
	assert.True(t, first.HasComparison)
	assert.Equal(t, 13.0, *first.LowestPrice)
	assert.Equal(t, 3, res.Pagination.TotalProducts)
	assert.Equal(t, []string{"Grill Town", "Shawarma Spot"}, res.AllRestaurants)
}

func TestSearch_Problems(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{name: "malformed json", body: `{"term":`, status: http.StatusBadRequest, detail: "malformed JSON body"},
		{name: "missing term", body: `{}`, status: http.StatusBadRequest, detail: "term is required"},
		{name: "bad sort", body: `{"term":"x","sort":"rating"}`, status: http.StatusBadRequest, detail: "sort must be one of"},
		{name: "unknown country", body: `{"term":"x","country":"AE"}`, status: http.StatusBadRequest, detail: "unsupported country"},
		{name: "price inverted", body: `{"term":"x","price_min":20,"price_max":10}`, status: http.StatusBadRequest, detail: "price_min exceeds price_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/search", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var p ProblemDetails
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "about:blank", p.Type)
			assert.Equal(t, "/api/search", p.Instance)
			assert.Contains(t, p.Detail, tt.detail)
		})
	}
}

func TestValidate(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	w := do(r, http.MethodPost, "/api/validate", `{"text":"I want a chicken shawarma please"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res app.ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"chicken", "shawarma"}, res.Terms)
	assert.True(t, res.Validation.Validated)
	assert.Equal(t, "chicken shawarma", res.Validation.Query)

	w = do(r, http.MethodPost, "/api/validate", `{"lat":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlatforms(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	w := do(r, http.MethodGet, "/api/platforms", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"platforms":[
		{"id":"snoonu","source":"Snoonu","countries":["QA"]},
		{"id":"talabat","source":"Talabat","countries":["QA"]}
	]}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	r := NewRouter(newTestApp(t), Options{}, nil)
	w := do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDocs(t *testing.T) {
	dir := t.TempDir()
	doc := "openapi: 3.0.3\ninfo:\n  title: test\n  version: \"1\"\npaths: {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.yaml"), []byte(doc), 0o644))

	r := NewRouter(newTestApp(t), Options{DocsDir: dir}, nil)
	w := do(r, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestMCPAuth(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r := NewRouter(newTestApp(t), Options{APIKey: "s3cret", MCP: echo}, nil)

	w := do(r, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")

	w = do(r, http.MethodPost, "/mcp", `{}`, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/mcp", `{}`, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusAccepted, w.Code)

	open := NewRouter(newTestApp(t), Options{MCP: echo}, nil)
	assert.Equal(t, http.StatusAccepted, do(open, http.MethodPost, "/mcp", `{}`).Code)
}
