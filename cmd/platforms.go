package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported delivery platforms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, closer, err := buildApp()
		if err != nil {
			return err
		}
		defer closer.Close()

		format, _ := cmd.Flags().GetString("format")
		if format == "table" {
			printPlatforms(cmd.OutOrStdout(), a.Platforms())
			return nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a.Platforms())
	},
}

func init() {
	platformsCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(platformsCmd)
}
