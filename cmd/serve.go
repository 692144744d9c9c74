package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/lukman83/dishscout/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, closer, err := buildApp()
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting MCP server on stdio")
	return mcpserver.Serve(a)
}
