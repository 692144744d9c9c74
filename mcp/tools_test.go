package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/dishscout/internal/aggregate"
	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/refine"
	"github.com/lukman83/dishscout/internal/search"
)

type menuAdapter struct {
	name, source string
	products     []models.RawProduct
}

func (m *menuAdapter) Name() string   { return m.name }
func (m *menuAdapter) Source() string { return m.source }

func (m *menuAdapter) Search(_ context.Context, query string, _, _ float64) []models.RawProduct {
	if !strings.Contains(query, "karak") {
		return nil
	}
	return append([]models.RawProduct(nil), m.products...)
}

func newTools(t *testing.T) *tools {
	t.Helper()
	snoonu := &menuAdapter{name: "snoonu", source: "Snoonu", products: []models.RawProduct{
		{Source: "Snoonu", RestaurantName: "Karak House", ProductName: "Karak", ProductPrice: models.Price(3), ETAMinutes: 15},
		{Source: "Snoonu", RestaurantName: "Tea Time", ProductName: "Karak Large", ProductPrice: models.Price(6), ETAMinutes: 45},
	}}
	reg := platform.NewRegistry()
	reg.Register(snoonu)
	markets := map[string]search.Market{"QA": {Platforms: []string{"snoonu"}, Lat: 25.2855, Lon: 51.5314}}
	return &tools{app: &app.App{
		Search:   search.New(aggregate.New(reg, aggregate.Options{}, nil), search.Options{DefaultCountry: "QA", Markets: markets}, nil),
		Refiner:  refine.New(snoonu, refine.Options{MinResults: 1}, nil),
		Registry: reg,
		Markets:  markets,
	}}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestSearchFood(t *testing.T) {
	tl := newTools(t)
	res, err := tl.handleSearchFood(context.Background(), call(map[string]any{"term": "karak", "time_max": 30}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out models.SearchResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Karak", out.Products[0].ProductName)
	assert.Equal(t, []string{"Karak House", "Tea Time"}, out.AllRestaurants)
}

func TestSearchFood_InvalidRequest(t *testing.T) {
	tl := newTools(t)
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing term", args: map[string]any{}, want: "term is required"},
		{name: "bad sort", args: map[string]any{"term": "karak", "sort": "rating"}, want: "sort must be one of"},
		{name: "price inverted", args: map[string]any{"term": "karak", "price_min": 9.0, "price_max": 1.0}, want: "price_min exceeds price_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tl.handleSearchFood(context.Background(), call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tl := newTools(t)
	res, err := tl.handleValidateQuery(context.Background(), call(map[string]any{"text": "I really want karak chai tonight"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out app.ValidateResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, []string{"karak", "chai"}, out.Terms)
	assert.True(t, out.Validation.Validated)

	res, err = tl.handleValidateQuery(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestValidateQuery_ExactQuery(t *testing.T) {
	tl := newTools(t)
	res, err := tl.handleValidateQuery(context.Background(), call(map[string]any{"query": "the karak with milk"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out app.ValidateResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, []string{"the", "karak", "with", "milk"}, out.Terms)
	assert.Equal(t, "the karak with milk", out.Validation.Query)

	res, err = tl.handleValidateQuery(context.Background(), call(map[string]any{
		"query": "masala tea",
		"terms": []any{"karak", "masala"},
	}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, []string{"karak", "masala"}, out.Terms)
	assert.Equal(t, "karak", out.Validation.Query)
}

func TestExtractKeywords(t *testing.T) {
	tl := newTools(t)
	res, err := tl.handleExtractKeywords(context.Background(), call(map[string]any{"text": "give me some spicy wings"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"search_terms":["spicy","wings"],"search_query":"spicy wings","original_text":"give me some spicy wings"}`, text(t, res))

	res, err = tl.handleExtractKeywords(context.Background(), call(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListPlatforms(t *testing.T) {
	tl := newTools(t)
	res, err := tl.handleListPlatforms(context.Background(), call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"snoonu","source":"Snoonu","countries":["QA"]}]`, text(t, res))
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newTools(t).app)
	names := make([]string, 0)
	for name := range s.ListTools() {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"search_food", "validate_query", "extract_keywords", "list_platforms"}, names)
}
