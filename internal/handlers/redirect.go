package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RedirectHandler serves the static redirect routes and the liveness root.
type RedirectHandler struct {
	webAppURL  string
	websiteURL string
}

// NewRedirectHandler creates the redirect handler; either URL may be empty.
func NewRedirectHandler(webAppURL, websiteURL string) *RedirectHandler {
	return &RedirectHandler{webAppURL: webAppURL, websiteURL: websiteURL}
}

// Register mounts /, /webapp, and /website on the Echo instance.
func (h *RedirectHandler) Register(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/webapp", h.WebApp)
	e.GET("/website", h.Website)
}

// Root returns a plain liveness line.
func (h *RedirectHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "otpgate is running")
}

// WebApp redirects to the configured web app, or 500 when unconfigured.
func (h *RedirectHandler) WebApp(c echo.Context) error {
	return h.redirect(c, h.webAppURL, "webapp url not configured")
}

// Website redirects to the configured website, or 500 when unconfigured.
func (h *RedirectHandler) Website(c echo.Context) error {
	return h.redirect(c, h.websiteURL, "website url not configured")
}

func (h *RedirectHandler) redirect(c echo.Context, url, missing string) error {
	if url == "" {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: missing})
	}
	return c.Redirect(http.StatusFound, url)
}
