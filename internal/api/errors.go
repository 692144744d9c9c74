package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lukman83/dishscout/internal/search"
)

// statusClientClosed is nginx's non-standard code for a client that hung up.
const statusClientClosed = 499

// ProblemDetails follows RFC 7807: Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

func writeProblem(c *gin.Context, status int, detail string) {
	title := http.StatusText(status)
	if title == "" {
		title = "Client Closed Request"
	}
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	})
}

// writeError maps pipeline errors onto problem responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidRequest):
		writeProblem(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(c, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		writeProblem(c, statusClientClosed, err.Error())
	default:
		writeProblem(c, http.StatusInternalServerError, err.Error())
	}
}
