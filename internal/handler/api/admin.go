package api

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"DevSight/internal/domain/models"
	domrepo "DevSight/internal/domain/repository"
	"DevSight/internal/service/catalog"
	"DevSight/internal/service/pricing"
	"DevSight/internal/service/useragent"
	"DevSight/internal/usecase"
	xhttp "DevSight/pkg/http"
	xlogger "DevSight/pkg/logger"
)

const (
	dashboardTopDevices = 20
	dashboardRecentLogs = 50
)

// AdminHandler serves reports, diagnostics and maintenance endpoints.
type AdminHandler struct {
	logger  *xlogger.Logger
	store   domrepo.LoginStore
	reports *usecase.Reports
	catalog *catalog.Catalog
	sampler *pricing.Sampler
}

func NewAdminHandler(
	logger *xlogger.Logger,
	store domrepo.LoginStore,
	reports *usecase.Reports,
	cat *catalog.Catalog,
	sampler *pricing.Sampler,
) *AdminHandler {
	return &AdminHandler{logger: logger, store: store, reports: reports, catalog: cat, sampler: sampler}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := h.reports.Summary(ctx)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	recent, err := h.store.Recent(ctx, dashboardRecentLogs)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	top := summary.ByDevice
	if len(top) > dashboardTopDevices {
		top = top[:dashboardTopDevices]
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"stats":          summary.Statistics,
		"device_summary": top,
		"brand_summary":  summary.ByBrand,
		"recent_logs":    recent,
		"catalog":        h.catalog.Stats(),
	})
}

func (h *AdminHandler) Devices(c echo.Context) error {
	req := &models.DevicesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	logs, err := h.store.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "devices", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"count":   len(logs),
		"devices": logs,
	})
}

func (h *AdminHandler) Report(c echo.Context) error {
	summary, err := h.reports.Summary(c.Request().Context())
	if err != nil {
		return h.fail(c, "report", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"stats":     summary.Statistics,
		"by_device": summary.ByDevice,
		"by_brand":  summary.ByBrand,
	})
}

func (h *AdminHandler) ValueReport(c echo.Context) error {
	v, err := h.reports.ValueReport(c.Request().Context())
	if err != nil {
		return h.fail(c, "value_report", err)
	}
	return xhttp.SuccessResponse(c, v)
}

func (h *AdminHandler) TopDevices(c echo.Context) error {
	req := &models.TopDevicesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	top, err := h.reports.TopDevices(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "top_devices", err)
	}
	return xhttp.SuccessResponse(c, top)
}

func (h *AdminHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		path string
		err  error
	)
	switch req.Format {
	case "csv":
		path, err = h.reports.ExportCSV(c.Request().Context())
	default:
		path, err = h.reports.ExportJSON(c.Request().Context())
	}
	if err != nil {
		return h.fail(c, "export", err)
	}
	h.logger.Info("report exported", xlogger.String("format", req.Format), xlogger.String("file", path))
	return xhttp.SuccessResponse(c, map[string]string{"file": path})
}

// TestUA shows how a User-Agent is parsed and which catalog entry it hits.
// Unlike the login path it falls back to a fuzzy lookup on the token.
func (h *AdminHandler) TestUA(c echo.Context) error {
	req := &models.TestUARequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ua := req.UA
	if ua == "" {
		ua = c.Request().UserAgent()
	}

	sig := useragent.Extract(ua)
	codes := useragent.ExtractModelCodes(ua)

	var matched *models.CatalogEntry
	for _, code := range codes {
		if e, ok := h.catalog.FindExact(code); ok {
			matched = &e
			break
		}
	}
	if matched == nil && !useragent.IsPlaceholder(sig.ModelToken) {
		if e, ok := h.catalog.FindFuzzy(sig.ModelToken, catalog.DefaultFuzzyThreshold); ok {
			matched = &e
		}
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"user_agent":      ua,
		"parsed":          sig,
		"extracted_codes": codes,
		"matched_device":  matched,
	})
}

func (h *AdminHandler) ClearLogs(c echo.Context) error {
	n, err := h.store.Clear(c.Request().Context())
	if err != nil {
		return h.fail(c, "clear_logs", err)
	}
	h.logger.Warn("login log cleared", xlogger.Int64("deleted", n))
	return xhttp.SuccessResponse(c, map[string]int64{"deleted": n})
}

// ScrapePrice samples one device name on demand.
func (h *AdminHandler) ScrapePrice(c echo.Context) error {
	req := &models.ScrapePriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sample := h.sampler.Sample(c.Request().Context(), req.Device)
	searchURL := h.sampler.SearchURL(req.Device)
	est := pricing.EstimateSample(sample)
	if est == nil {
		return xhttp.NotFoundResponse(c, map[string]string{
			"error":         fmt.Sprintf("No price found for: %s", req.Device),
			"device":        req.Device,
			"tokopedia_url": searchURL,
		})
	}
	est.SourceURL = searchURL

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"device":        req.Device,
		"price":         pricing.ToLegacy(est, sample),
		"estimate":      est,
		"tokopedia_url": searchURL,
	})
}

func (h *AdminHandler) ClearScraperCache(c echo.Context) error {
	n, err := h.sampler.ClearCache(c.Request().Context())
	if err != nil {
		return h.fail(c, "clear_price_cache", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"cleared": n,
		"message": fmt.Sprintf("Cleared %d cached price entries", n),
	})
}

func (h *AdminHandler) CatalogStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.Stats())
}

func (h *AdminHandler) CatalogBrands(c echo.Context) error {
	brands := h.catalog.Brands()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"count":  len(brands),
		"brands": brands,
	})
}

func (h *AdminHandler) CatalogBrandDevices(c echo.Context) error {
	req := &models.BrandRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	devices := h.catalog.DevicesByBrand(req.Brand)
	if len(devices) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown brand %q", req.Brand))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"brand":   req.Brand,
		"count":   len(devices),
		"devices": devices,
	})
}

func (h *AdminHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("store health check failed", xlogger.Error(err))
		return xhttp.ServiceUnavailableResponse(c, map[string]string{"store": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"store":   "ok",
		"catalog": h.catalog.Len(),
	})
}

func (h *AdminHandler) fail(c echo.Context, op string, err error) error {
	h.logger.Error("admin request failed", xlogger.String("op", op), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError(op+" failed").WithError(err))
}
