package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/refine"
	"github.com/lukman83/dishscout/internal/search"
)

type tools struct {
	app *app.App
}

func registerTools(s *server.MCPServer, t *tools) {
	// search_food
	searchTool := mcp.NewTool("search_food",
		mcp.WithDescription("Search food delivery platforms for a dish and compare prices across them"),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Dish or restaurant to search for"),
		),
		mcp.WithNumber("lat", mcp.Description("Delivery latitude (default: market centre)")),
		mcp.WithNumber("lon", mcp.Description("Delivery longitude (default: market centre)")),
		mcp.WithString("country", mcp.Description("ISO country code, e.g. QA or SA (default: inferred from lat/lon)")),
		mcp.WithString("sort",
			mcp.Description("Ranking: price or distance (default: price)"),
			mcp.Enum(models.SortPrice, models.SortDistance),
		),
		mcp.WithNumber("page", mcp.Description("Page number (default: 1)")),
		mcp.WithArray("platforms",
			mcp.Description("Platform ids to query (default: the country's platforms)"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("price_min", mcp.Description("Minimum price")),
		mcp.WithNumber("price_max", mcp.Description("Maximum price")),
		mcp.WithNumber("time_min", mcp.Description("Minimum delivery time in minutes")),
		mcp.WithNumber("time_max", mcp.Description("Maximum delivery time in minutes")),
		mcp.WithString("restaurant", mcp.Description("Only show this restaurant")),
	)
	s.AddTool(searchTool, t.handleSearchFood)

	// validate_query
	validateTool := mcp.NewTool("validate_query",
		mcp.WithDescription("Check whether a query finds results, shortening it until it does"),
		mcp.WithString("text", mcp.Description("Free-form request, reduced to keywords")),
		mcp.WithString("query", mcp.Description("Exact query to validate; shortened by dropping trailing words")),
		mcp.WithArray("terms",
			mcp.Description("Words to shorten by (default: the words of query, or the keywords of text)"),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("lat", mcp.Description("Delivery latitude")),
		mcp.WithNumber("lon", mcp.Description("Delivery longitude")),
		mcp.WithString("country", mcp.Description("ISO country code")),
	)
	s.AddTool(validateTool, t.handleValidateQuery)

	// extract_keywords
	keywordsTool := mcp.NewTool("extract_keywords",
		mcp.WithDescription("Reduce a spoken or typed food request to search keywords"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Request text"),
		),
	)
	s.AddTool(keywordsTool, t.handleExtractKeywords)

	// list_platforms
	platformsTool := mcp.NewTool("list_platforms",
		mcp.WithDescription("List the delivery platforms and the countries they serve"),
	)
	s.AddTool(platformsTool, t.handleListPlatforms)
}

func (t *tools) handleSearchFood(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := models.SearchRequest{
		Term:             request.GetString("term", ""),
		Lat:              request.GetFloat("lat", 0),
		Lon:              request.GetFloat("lon", 0),
		Country:          request.GetString("country", ""),
		Sort:             request.GetString("sort", ""),
		Page:             request.GetInt("page", 0),
		Platforms:        request.GetStringSlice("platforms", nil),
		RestaurantFilter: request.GetString("restaurant", ""),
	}
	args := request.GetArguments()
	if _, ok := args["price_min"]; ok {
		req.PriceMin = models.Price(request.GetFloat("price_min", 0))
	}
	if _, ok := args["price_max"]; ok {
		req.PriceMax = models.Price(request.GetFloat("price_max", 0))
	}
	if _, ok := args["time_min"]; ok {
		v := request.GetInt("time_min", 0)
		req.TimeMin = &v
	}
	if _, ok := args["time_max"]; ok {
		v := request.GetInt("time_max", 0)
		req.TimeMax = &v
	}

	if err := app.Check(req); err != nil {
		return toolError(err), nil
	}
	res, err := t.app.Search.Search(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (t *tools) handleValidateQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := app.ValidateRequest{
		Text:    request.GetString("text", ""),
		Query:   request.GetString("query", ""),
		Terms:   request.GetStringSlice("terms", nil),
		Lat:     request.GetFloat("lat", 0),
		Lon:     request.GetFloat("lon", 0),
		Country: request.GetString("country", ""),
	}
	if err := app.Check(req); err != nil {
		return toolError(err), nil
	}
	res, err := t.app.Validate(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (t *tools) handleExtractKeywords(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("text", "")
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	return jsonResult(refine.ExtractKeywords(text))
}

func (t *tools) handleListPlatforms(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.app.Platforms())
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, search.ErrInvalidRequest) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
