// Package mcp exposes the search pipeline as Model Context Protocol tools.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/dishscout/internal/app"
)

const (
	serverName    = "dishscout"
	serverVersion = "1.0.0"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(a *app.App) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, &tools{app: a})
	return s
}

// Serve runs the MCP server over stdio until stdin closes.
func Serve(a *app.App) error {
	return server.ServeStdio(NewServer(a))
}

// Handler serves the MCP server over streamable HTTP. Authentication is left
// to the router it is mounted on.
func Handler(a *app.App) http.Handler {
	return server.NewStreamableHTTPServer(NewServer(a), server.WithStateLess(true))
}
