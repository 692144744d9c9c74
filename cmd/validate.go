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
	"github.com/lukman83/dishscout/internal/platform"
	"github.com/lukman83/dishscout/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [text]",
	Short: "Extract keywords from a request and find a query that returns results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.Bool("exact", false, "Treat the argument as a query instead of free text")
	f.Float64("lat", 0, "Delivery latitude")
	f.Float64("lon", 0, "Delivery longitude")
	f.String("country", "", "ISO country code")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, closer, err := buildApp()
	if err != nil {
		return err
	}
	defer closer.Close()

	f := cmd.Flags()
	var req app.ValidateRequest
	if exact, _ := f.GetBool("exact"); exact {
		req.Query = strings.Join(args, " ")
	} else {
		req.Text = strings.Join(args, " ")
	}
	req.Lat, _ = f.GetFloat64("lat")
	req.Lon, _ = f.GetFloat64("lon")
	req.Country, _ = f.GetString("country")
	if err := app.Check(req); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start("Validating...")
	res, err := a.Validate(platform.WithProgress(ctx, spin.Update), req)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
