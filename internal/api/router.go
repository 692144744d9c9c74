// Package api serves the search pipeline over HTTP with gin.
package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukman83/dishscout/internal/app"
	"github.com/lukman83/dishscout/internal/models"
)

type Options struct {
	// APIKey, when set, is required as a bearer token on /mcp.
	APIKey string
	// MCP is mounted at /mcp when non-nil.
	MCP http.Handler
	// DocsDir holds api.yaml for the /docs page.
	DocsDir string
}

type handlers struct {
	app    *app.App
	logger *slog.Logger
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(a *app.App, opts Options, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DocsDir == "" {
		opts.DocsDir = "docs"
	}
	h := &handlers{app: a, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs", docsHandler(opts.DocsDir))

	v := r.Group("/api")
	v.POST("/search", h.search)
	v.POST("/validate", h.validate)
	v.GET("/platforms", h.platforms)

	if opts.MCP != nil {
		mcp := gin.WrapH(opts.MCP)
		if opts.APIKey != "" {
			r.Any("/mcp", bearerAuth(opts.APIKey), mcp)
		} else {
			r.Any("/mcp", mcp)
		}
	}
	return r
}

func (h *handlers) search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return
	}
	if err := app.Check(req); err != nil {
		writeError(c, err)
		return
	}
	res, err := h.app.Search.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) validate(c *gin.Context) {
	var req app.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return
	}
	if err := app.Check(req); err != nil {
		writeError(c, err)
		return
	}
	res, err := h.app.Validate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) platforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": h.app.Platforms()})
}

func docsHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		html, err := scalargo.NewV2(
			scalargo.WithSpecDir(dir),
			scalargo.WithMetaDataOpts(
				scalargo.WithTitle("dishscout API"),
			),
		)
		if err != nil {
			writeProblem(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http: request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client", c.ClientIP()),
		)
	}
}

func bearerAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Header("WWW-Authenticate", `Bearer realm="mcp"`)
			writeProblem(c, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			c.Header("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			writeProblem(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Next()
	}
}
