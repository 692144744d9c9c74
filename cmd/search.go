package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search every platform for a dish and compare offers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.Float64("lat", 0, "Delivery latitude (default: market centre)")
	f.Float64("lon", 0, "Delivery longitude (default: market centre)")
	f.String("country", "", "ISO country code (default: inferred from lat/lon)")
	f.String("sort", models.SortPrice, "Sort: price, distance")
	f.Int("page", 1, "Page number")
	f.StringSlice("platforms", nil, "Platform ids to query (default: the country's platforms)")
	f.Float64("price-min", 0, "Minimum price")
	f.Float64("price-max", 0, "Maximum price")
	f.Int("time-min", 0, "Minimum delivery time in minutes")
	f.Int("time-max", 0, "Maximum delivery time in minutes")
	f.String("restaurant", "", "Only show this restaurant")
	f.String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, closer, err := buildApp()
	if err != nil {
		return err
	}
	defer closer.Close()

	req := searchRequest(cmd, strings.Join(args, " "))
	if err := app.Check(req); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Searching '%s'...", req.Term))
	res, err := a.Search.Search(platform.WithProgress(ctx, spin.Update), req)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	switch format {
	case "table":
		printSearchResult(cmd.OutOrStdout(), res)
	default:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return nil
}

func searchRequest(cmd *cobra.Command, term string) models.SearchRequest {
	f := cmd.Flags()
	req := models.SearchRequest{Term: term}
	req.Lat, _ = f.GetFloat64("lat")
	req.Lon, _ = f.GetFloat64("lon")
	req.Country, _ = f.GetString("country")
	req.Sort, _ = f.GetString("sort")
	req.Page, _ = f.GetInt("page")
	req.Platforms, _ = f.GetStringSlice("platforms")
	req.RestaurantFilter, _ = f.GetString("restaurant")

	if f.Changed("price-min") {
		v, _ := f.GetFloat64("price-min")
		req.PriceMin = &v
	}
	if f.Changed("price-max") {
		v, _ := f.GetFloat64("price-max")
		req.PriceMax = &v
	}
	if f.Changed("time-min") {
		v, _ := f.GetInt("time-min")
		req.TimeMin = &v
	}
	if f.Changed("time-max") {
		v, _ := f.GetInt("time-max")
		req.TimeMax = &v
	}
	return req
}
