package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// TenantPathPrefix is where tenant-scoped render routes are mounted.
const TenantPathPrefix = "/t"

// Subdomain rewrites requests arriving on a tenant subdomain
// (<label>.<base-domain>) to the tenant render routes, so
// acme.example.com/About is served as /t/acme/About. Non-tenant hosts and
// API/asset paths pass through unmodified.
func Subdomain(baseDomain string, engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, TenantPathPrefix+"/") ||
			strings.HasPrefix(path, "/uploads/") {
			c.Next()
			return
		}

		label, ok := TenantLabel(c.Request.Host, baseDomain)
		if !ok {
			c.Next()
			return
		}

		c.Request.URL.Path = TenantPathPrefix + "/" + label + path
		engine.HandleContext(c)
		c.Abort()
	}
}

// TenantLabel extracts the tenant subdomain label from a Host header.
// Returns false for the bare base domain, www, nested labels and unrelated
// hosts. The port, if any, is ignored.
func TenantLabel(host, baseDomain string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	baseDomain = strings.ToLower(baseDomain)
	if b, _, err := net.SplitHostPort(baseDomain); err == nil {
		baseDomain = b
	}

	if host == "" || baseDomain == "" || host == baseDomain {
		return "", false
	}

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}

	label := strings.TrimSuffix(host, suffix)
	if label == "" || label == "www" || strings.Contains(label, ".") {
		return "", false
	}
	return label, true
}
