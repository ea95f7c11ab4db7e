package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitesmith/core/internal/middleware"
	"github.com/sitesmith/core/internal/modules/auth/auth"
	"github.com/sitesmith/core/internal/modules/auth/user"
	"github.com/sitesmith/core/internal/modules/content/page"
	"github.com/sitesmith/core/internal/modules/content/revision"
	"github.com/sitesmith/core/internal/modules/content/site"
	"github.com/sitesmith/core/internal/modules/render"
	"github.com/sitesmith/core/internal/modules/stats/recently"
	"github.com/sitesmith/core/internal/modules/stats/search"
	"github.com/sitesmith/core/internal/modules/storage/file"
	"github.com/sitesmith/core/internal/pkg/mediawiki"
	"github.com/sitesmith/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth(db)
	optionalAuthMW := middleware.OptionalAuth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence guards run on every route when Redis is
	// configured.
	if a.rc != nil {
		r.Use(middleware.RateLimit(a.rc.Raw()))
		r.Use(middleware.Idempotence(a.rc.Raw()))
	}

	// Wiki plumbing shared by every module that mirrors.
	wiki := mediawiki.NewClient(time.Duration(cfg.Wiki.TimeoutSeconds) * time.Second)
	farm := mediawiki.NewFarm(wiki, cfg.Wiki.FarmAPI, cfg.Wiki.AdminToken, cfg.WikiAPIURL)

	siteSvc := site.NewService(db, farm, a.logger)
	pageSvc := page.NewService(db, wiki, a.logger)
	revisionSvc := revision.NewService(db, wiki, pageSvc, a.logger)
	fileSvc := file.NewService(db, wiki, cfg, a.logger)
	searchSvc := search.NewService(db, wiki, cfg, a.logger)
	recentlySvc := recently.NewService(db, wiki, a.logger)

	// Public tenant rendering, reached directly or via subdomain rewrite.
	// Anonymous reads are served from the response cache when Redis is up;
	// the cache runs after the optional authenticator so owners bypass it.
	root := r.Group("")
	renderMWs := []gin.HandlerFunc{optionalAuthMW}
	if a.rc != nil {
		renderMWs = append(renderMWs, middleware.HTTPCache(a.rc.Raw(), middleware.HTTPCacheOptions{}))
	}
	render.NewHandler(siteSvc, pageSvc).RegisterRoutes(root, renderMWs...)
	root.Static(cfg.Uploads.PublicBase, cfg.Uploads.Dir)

	// Versioned API
	api := r.Group(apiPrefix)

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW)

	site.NewHandler(siteSvc, cfg).RegisterRoutes(api, authMW)
	page.NewHandler(pageSvc, siteSvc).RegisterRoutes(api, authMW)
	revision.NewHandler(revisionSvc, siteSvc).RegisterRoutes(api, authMW)
	file.NewHandler(fileSvc, siteSvc, pageSvc).RegisterRoutes(api, authMW)
	search.NewHandler(searchSvc, siteSvc).RegisterRoutes(api, authMW)
	recently.NewHandler(recentlySvc).RegisterRoutes(api, authMW)
}
