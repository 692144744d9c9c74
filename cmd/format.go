package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	lowestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	sourceStyle = lipgloss.NewStyle().Width(12)
)

// printSearchResult prints one page of offer groups in a card layout.
func printSearchResult(w io.Writer, res *models.SearchResult) {
	if len(res.Products) == 0 {
		fmt.Fprintf(w, "No results for '%s' in %s.\n", res.Term, res.Country)
		return
	}

	offset := (res.Pagination.CurrentPage - 1) * res.Pagination.PerPage
	for i, g := range res.Products {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf(" %d. %s", offset+i+1, g.ProductName)
		if g.HasComparison {
			header += mutedStyle.Render(fmt.Sprintf("  [%d platforms]", g.PlatformCount))
		}
		fmt.Fprintln(w, titleStyle.Render(header))
		fmt.Fprintf(w, "    %s\n", g.RestaurantName)

		for _, v := range g.Variants {
			line := fmt.Sprintf("    %s %s  %s", sourceStyle.Render(v.Source), formatPrice(v.Price), formatETA(v))
			if v.Price != nil && v.IsLowest && g.HasComparison {
				line = lowestStyle.Render(line + "  lowest")
			}
			fmt.Fprintln(w, line)
			if v.ProductURL != "" {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Render(string(v.ProductURL)))
			}
		}
	}

	p := res.Pagination
	fmt.Fprintln(w)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Page %d of %d  |  %d offers  |  %s",
		p.CurrentPage, p.TotalPages, p.TotalProducts, strings.Join(res.Platforms, ", "))))
}

func printPlatforms(w io.Writer, platforms []app.PlatformInfo) {
	for _, p := range platforms {
		countries := strings.Join(p.Countries, ", ")
		if countries == "" {
			countries = "-"
		}
		fmt.Fprintf(w, "%s %s  %s\n", sourceStyle.Render(p.ID), truncate(p.Source, 20), mutedStyle.Render(countries))
	}
}

// formatPrice formats a known price with two decimals, or "n/a".
func formatPrice(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *p)
}

func formatETA(v models.Variant) string {
	if v.ETAMinutes >= models.UnknownETA {
		return "ETA unknown"
	}
	if v.RestaurantETA != "" {
		return v.RestaurantETA
	}
	return fmt.Sprintf("%d mins", v.ETAMinutes)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
