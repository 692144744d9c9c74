package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/dishscout/internal/refine"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [text]",
	Short: "Reduce a spoken or typed request to search keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(refine.ExtractKeywords(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}
