package api

import (
	"github.com/labstack/echo/v4"

	"DevSight/internal/service/metrics"
	"DevSight/internal/service/ratelimit"
	xhttp "DevSight/pkg/http"
)

// Router wires every DevSight endpoint onto Echo.
type Router struct {
	portal  *PortalHandler
	admin   *AdminHandler
	live    *LiveHub
	limiter *ratelimit.Limiter
}

var _ xhttp.Handler = (*Router)(nil)

// NewRouter builds the route table. limiter guards login and price
// scraping per client IP; nil disables limiting.
func NewRouter(portal *PortalHandler, admin *AdminHandler, live *LiveHub, limiter *ratelimit.Limiter) *Router {
	metrics.Register()
	return &Router{portal: portal, admin: admin, live: live, limiter: limiter}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", r.portal.Index)
	e.GET("/login", r.portal.LoginForm)
	e.POST("/login", r.portal.Login, observe("login"), limitByIP(r.limiter, "login"))
	e.GET("/dashboard", r.admin.Dashboard, observe("dashboard"))
	e.GET("/healthz", r.admin.Health)
	e.GET("/ws/logins", r.live.Serve)

	g := e.Group("/api")
	g.GET("/devices", r.admin.Devices, observe("devices"))
	g.GET("/report", r.admin.Report, observe("report"))
	g.GET("/report/value", r.admin.ValueReport, observe("report_value"))
	g.GET("/report/top", r.admin.TopDevices, observe("report_top"))
	g.GET("/export/:format", r.admin.Export, observe("export"))
	g.GET("/test-ua", r.admin.TestUA, observe("test_ua"))
	g.POST("/clear-logs", r.admin.ClearLogs, observe("clear_logs"))
	g.GET("/scrape-price/:device", r.admin.ScrapePrice, observe("scrape_price"), limitByIP(r.limiter, "scrape_price"))
	g.POST("/scraper-cache/clear", r.admin.ClearScraperCache, observe("scraper_cache_clear"))

	cg := g.Group("/catalog")
	cg.GET("/stats", r.admin.CatalogStats)
	cg.GET("/brands", r.admin.CatalogBrands)
	cg.GET("/brands/:brand", r.admin.CatalogBrandDevices)
}
