package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	xutil "DevSight/pkg/util"
)

// HeaderValue returns a request header with whitespace and wrapping quotes
// removed. Client-hint headers arrive as quoted strings.
func HeaderValue(c echo.Context, name string) string {
	return xutil.TrimQuotes(strings.TrimSpace(c.Request().Header.Get(name)))
}
