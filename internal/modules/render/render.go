// Package render serves the public face of every tenant site. Requests reach
// it either directly under /t/<subdomain> or through the subdomain rewrite.
package render

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/models"
	"github.com/sitesmith/core/internal/modules/content/page"
	"github.com/sitesmith/core/internal/modules/content/site"
)

type Handler struct {
	sites *site.Service
	pages *page.Service
}

func NewHandler(sites *site.Service, pages *page.Service) *Handler {
	return &Handler{sites: sites, pages: pages}
}

// RegisterRoutes mounts the tenant routes. The first middleware should be an
// optional authenticator; a signed-in site owner gets a different empty state
// than a visitor, so any response cache must run after it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mws...), h.page)
	rg.GET("/t/:subdomain/*title", handlers...)
}

func (h *Handler) page(c *gin.Context) {
	s, err := h.sites.GetBySubdomain(c.Param("subdomain"))
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	if s == nil {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusNotFound, notFoundHTML())
		return
	}

	title := strings.Trim(c.Param("title"), "/")
	view, err := h.pages.Resolve(c.Request.Context(), s, title)
	if err != nil {
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if view.Source == page.SourceEmpty {
		isOwner := middleware.IsAuthenticated(c) && middleware.CurrentUserID(c) == s.UserID
		c.String(http.StatusOK, emptyHTML(s.Name, isOwner))
		return
	}

	body := view.Content
	if view.Format == models.PageFormatMarkdown {
		body = renderMarkdown(body)
	}
	c.String(http.StatusOK, pageHTML(s.Name, view.Title, body))
}

func pageHTML(siteName, title, body string) string {
	return documentHTML(title+" | "+siteName, `<h1>`+template.HTMLEscapeString(title)+`</h1>
`+body)
}

func emptyHTML(siteName string, isOwner bool) string {
	msg := "This site has no content yet. Check back soon."
	if isOwner {
		msg = "Your site is live, but it has no pages yet. Create a Home page to get started."
	}
	return documentHTML(siteName, `<p class="empty">`+template.HTMLEscapeString(msg)+`</p>`)
}

func notFoundHTML() string {
	return documentHTML("Not Found", `<p class="empty">There is no site here.</p>`)
}

func documentHTML(title, main string) string {
	return `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>` + template.HTMLEscapeString(title) + `</title>
  <style>
    body { margin: 0; padding: 24px; font: 16px/1.7 -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; color: #222; background: #fff; }
    main { max-width: 860px; margin: 0 auto; }
    h1 { margin: 0 0 20px; font-size: 28px; }
    img { max-width: 100%; }
    .empty { color: #888; text-align: center; margin-top: 80px; }
  </style>
</head>
<body>
  <main>
` + main + `
  </main>
</body>
</html>`
}
