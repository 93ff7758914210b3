package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"DevSight/internal/domain/models"
	drepo "DevSight/internal/domain/repository"
	"DevSight/pkg/util"
)

// exportLimit caps how many logins an export file holds.
const exportLimit = 10000

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders a rupiah amount with dot grouping: "Rp 1.234.567".
// Zero renders as "-".
func FormatIDR(amount int64) string {
	if amount == 0 {
		return "-"
	}
	return "Rp " + idrPrinter.Sprintf("%d", amount)
}

type ReportSummary struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Statistics  *models.LoginStats     `json:"statistics"`
	ByDevice    []models.DeviceSummary `json:"by_device"`
	ByBrand     []models.BrandSummary  `json:"by_brand"`
}

type BrandValue struct {
	Brand          string `json:"brand"`
	Count          int64  `json:"count"`
	Value          int64  `json:"value"`
	FormattedValue string `json:"formatted_value"`
}

type ValueReport struct {
	TotalLogins         int64        `json:"total_logins"`
	TotalEstimatedValue int64        `json:"total_estimated_value"`
	FormattedValue      string       `json:"formatted_value"`
	ByBrand             []BrandValue `json:"by_brand"`
}

// Reports builds summaries and export files from the login store.
type Reports struct {
	store  drepo.LoginStore
	outDir string
	now    func() time.Time
}

func NewReports(store drepo.LoginStore, outDir string) *Reports {
	return &Reports{store: store, outDir: outDir, now: time.Now}
}

func (r *Reports) Summary(ctx context.Context) (*ReportSummary, error) {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	devices, err := r.store.DeviceSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("device summary: %w", err)
	}
	brands, err := r.store.BrandSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("brand summary: %w", err)
	}
	return &ReportSummary{
		GeneratedAt: r.now(),
		Statistics:  stats,
		ByDevice:    devices,
		ByBrand:     brands,
	}, nil
}

func (r *Reports) TopDevices(ctx context.Context, limit int) ([]models.DeviceSummary, error) {
	devices, err := r.store.DeviceSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("device summary: %w", err)
	}
	if limit >= 0 && len(devices) > limit {
		devices = devices[:limit]
	}
	return devices, nil
}

func (r *Reports) ValueReport(ctx context.Context) (*ValueReport, error) {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	brands, err := r.store.BrandSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("brand summary: %w", err)
	}

	out := &ValueReport{
		TotalLogins:         stats.TotalLogins,
		TotalEstimatedValue: stats.TotalEstimatedValue,
		FormattedValue:      FormatIDR(stats.TotalEstimatedValue),
		ByBrand:             make([]BrandValue, 0, len(brands)),
	}
	for _, b := range brands {
		out.ByBrand = append(out.ByBrand, BrandValue{
			Brand:          b.Brand,
			Count:          b.LoginCount,
			Value:          b.TotalValue,
			FormattedValue: FormatIDR(b.TotalValue),
		})
	}
	return out, nil
}

var csvHeader = []string{
	"id", "username", "ip_address", "user_agent", "model_code", "brand", "marketing_name",
	"os_type", "os_version", "browser", "price_idr", "scraped_price_min", "scraped_price_max",
	"scraped_price_median", "scrape_confidence", "scrape_sample_count", "price_source",
	"tokopedia_url", "login_time",
}

// ExportCSV writes every stored login (up to the export cap) and returns the
// file path.
func (r *Reports) ExportCSV(ctx context.Context) (string, error) {
	logs, err := r.store.Recent(ctx, exportLimit)
	if err != nil {
		return "", fmt.Errorf("load logins: %w", err)
	}
	f, path, err := r.create("csv")
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for i := range logs {
		if err := w.Write(csvRow(&logs[i])); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

// ExportJSON writes the summary plus the logins and returns the file path.
func (r *Reports) ExportJSON(ctx context.Context) (string, error) {
	summary, err := r.Summary(ctx)
	if err != nil {
		return "", err
	}
	logs, err := r.store.Recent(ctx, exportLimit)
	if err != nil {
		return "", fmt.Errorf("load logins: %w", err)
	}
	f, path, err := r.create("json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	payload := struct {
		*ReportSummary
		Logs []models.LoginRecord `json:"logs"`
	}{summary, logs}
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("write json: %w", err)
	}
	return path, nil
}

func (r *Reports) create(ext string) (*os.File, string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(r.outDir, "device_report_"+util.ReportStamp(r.now())+"."+ext)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create report: %w", err)
	}
	return f, path, nil
}

func csvRow(l *models.LoginRecord) []string {
	return []string{
		l.ID,
		l.Username,
		l.IPAddress,
		l.UserAgent,
		l.ModelCode,
		l.BrandName(),
		l.Marketing(),
		l.OSType,
		l.OSVersion,
		l.Browser,
		strconv.FormatInt(l.PriceIDR, 10),
		optInt64Cell(l.ScrapedPriceMin),
		optInt64Cell(l.ScrapedPriceMax),
		optInt64Cell(l.ScrapedPriceMedian),
		optStringCell(l.ScrapeConfidence),
		optIntCell(l.ScrapeSampleCount),
		string(l.PriceSource),
		optStringCell(l.SearchURL),
		l.LoginTime.Format(time.RFC3339),
	}
}

func optInt64Cell(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func optIntCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func optStringCell(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
