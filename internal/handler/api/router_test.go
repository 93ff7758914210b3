package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"DevSight/internal/domain/models"
	"DevSight/internal/repository"
	"DevSight/internal/service/catalog"
	"DevSight/internal/service/pricing"
	"DevSight/internal/service/ratelimit"
	"DevSight/internal/usecase"
	"DevSight/pkg/cache"
	xlogger "DevSight/pkg/logger"
	pkgmetrics "DevSight/pkg/metrics"
)

const (
	s23UA = "Mozilla/5.0 (Linux; Android 13; SM-S911B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

	testDevicesCSV = "Brand,Model_Code,Marketing_Name\n" +
		"Samsung,SM-S911B,Galaxy S23\n" +
		"Xiaomi,2201117TG,Redmi Note 11\n"
	testPricesCSV = "Marketing_Name,Price_IDR,Year\n" +
		"Galaxy S23,12999000,2023\n"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	e     *echo.Echo
	store *repository.MemoryLoginStore
	live  *LiveHub
}

func newTestApp(t *testing.T, limiter *ratelimit.Limiter) *testApp {
	t.Helper()

	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	t.Cleanup(listing.Close)

	cat, err := catalog.LoadReaders(strings.NewReader(testDevicesCSV), strings.NewReader(testPricesCSV))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	log := xlogger.NewNop()
	rec := pkgmetrics.New(prometheus.NewRegistry())
	sampler := pricing.NewSampler(cache.NewMemoryCache(), log, rec,
		pricing.WithSearchURL(listing.URL+"/search"),
		pricing.WithRequestDelay(time.Millisecond),
		pricing.WithTimeout(2*time.Second),
	)

	store := repository.NewMemoryLoginStore()
	live := NewLiveHub(log)
	t.Cleanup(live.Close)

	identifier := usecase.NewIdentifier(cat, sampler, log)
	recorder := usecase.NewLoginRecorder(store, nil, live, rec, usecase.BackendDirect, log)
	reports := usecase.NewReports(store, t.TempDir())

	router := NewRouter(
		NewPortalHandler(log, identifier, recorder),
		NewAdminHandler(log, store, reports, cat, sampler),
		live,
		limiter,
	)
	e := echo.New()
	router.RegisterRoutes(e)
	return &testApp{e: e, store: store, live: live}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.e.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func loginRequest(username, ua string) *http.Request {
	form := url.Values{"username": {username}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("User-Agent", ua)
	return req
}

func TestIndexRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, nil)
	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginFormRequestsClientHints(t *testing.T) {
	app := newTestApp(t, nil)
	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get(headerAcceptCH), hintModel) {
		t.Fatalf("Accept-CH = %q", w.Header().Get(headerAcceptCH))
	}
	if w.Header().Get(headerCriticalCH) != hintModel {
		t.Fatalf("Critical-CH = %q", w.Header().Get(headerCriticalCH))
	}
	if !strings.Contains(w.Body.String(), `action="/login"`) {
		t.Fatalf("login form missing")
	}
}

func TestLoginRecordsIdentifiedDevice(t *testing.T) {
	app := newTestApp(t, nil)
	w, env := app.do(t, loginRequest("alice", s23UA))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Record.ModelCode != "SM-S911B" {
		t.Fatalf("model code = %q", resp.Record.ModelCode)
	}
	if resp.Record.Brand == nil || *resp.Record.Brand != "Samsung" {
		t.Fatalf("brand = %v", resp.Record.Brand)
	}
	if resp.Record.PriceSource != models.PriceSourceDatabase || resp.Record.PriceIDR != 12999000 {
		t.Fatalf("price = %d from %s", resp.Record.PriceIDR, resp.Record.PriceSource)
	}

	logs, _ := app.store.Recent(context.Background(), 10)
	if len(logs) != 1 || logs[0].Username != "alice" {
		t.Fatalf("stored logs = %+v", logs)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	app := newTestApp(t, nil)
	w, _ := app.do(t, loginRequest("", s23UA))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if n, _ := app.store.Stats(context.Background()); n.TotalLogins != 0 {
		t.Fatalf("nothing should be stored, got %d", n.TotalLogins)
	}
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApp(t, ratelimit.New(2, 0.0001))
	for i := 0; i < 2; i++ {
		if w, _ := app.do(t, loginRequest("bob", s23UA)); w.Code != http.StatusOK {
			t.Fatalf("login %d status = %d", i, w.Code)
		}
	}
	w, env := app.do(t, loginRequest("bob", s23UA))
	if w.Code != http.StatusTooManyRequests || env.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d/%d", w.Code, env.Status)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	app := newTestApp(t, nil)
	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/api/export/xml", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	w, env := app.do(t, httptest.NewRequest(http.MethodGet, "/api/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csv export status = %d body=%s", w.Code, w.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(env.Data, &out); err != nil || !strings.HasSuffix(out["file"], ".csv") {
		t.Fatalf("export file = %v (%v)", out, err)
	}
}

func TestScrapePriceNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	w, env := app.do(t, httptest.NewRequest(http.MethodGet, "/api/scrape-price/Pixel9", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["device"] != "Pixel9" || !strings.Contains(out["tokopedia_url"], "q=pixel9") {
		t.Fatalf("body = %v", out)
	}
}

func TestTestUAMatchesCatalog(t *testing.T) {
	app := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/test-ua?ua="+url.QueryEscape(s23UA), nil)
	w, env := app.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Codes   []string             `json:"extracted_codes"`
		Matched *models.CatalogEntry `json:"matched_device"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Matched == nil || out.Matched.MarketingName != "Galaxy S23" {
		t.Fatalf("matched = %+v codes=%v", out.Matched, out.Codes)
	}
}

func TestClearLogs(t *testing.T) {
	app := newTestApp(t, nil)
	app.do(t, loginRequest("alice", s23UA))
	app.do(t, loginRequest("bob", s23UA))

	w, env := app.do(t, httptest.NewRequest(http.MethodPost, "/api/clear-logs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]int64
	if err := json.Unmarshal(env.Data, &out); err != nil || out["deleted"] != 2 {
		t.Fatalf("deleted = %v (%v)", out, err)
	}
}

func TestCatalogBrandDevices(t *testing.T) {
	app := newTestApp(t, nil)
	if w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/brands/Samsung", nil)); w.Code != http.StatusOK {
		t.Fatalf("known brand status = %d", w.Code)
	}
	if w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/api/catalog/brands/Nokia", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("unknown brand status = %d", w.Code)
	}
}

func TestLiveFeedReceivesLogins(t *testing.T) {
	app := newTestApp(t, nil)
	srv := httptest.NewServer(app.e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/logins", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for app.live.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	app.do(t, loginRequest("carol", s23UA))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.LoginRecord
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Username != "carol" || got.ModelCode != "SM-S911B" {
		t.Fatalf("pushed record = %+v", got)
	}
}
