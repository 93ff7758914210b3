package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"DevSight/internal/domain/models"
	"DevSight/internal/repository"
)

func TestFormatIDR(t *testing.T) {
	cases := map[int64]string{
		0:          "-",
		500:        "Rp 500",
		1234567:    "Rp 1.234.567",
		15_250_000: "Rp 15.250.000",
	}
	for in, want := range cases {
		if got := FormatIDR(in); got != want {
			t.Errorf("FormatIDR(%d) = %q, want %q", in, got, want)
		}
	}
}

func newTestReports(t *testing.T) *Reports {
	t.Helper()
	store := repository.NewMemoryLoginStore()
	ctx := context.Background()
	for i, name := range []string{"ani", "budi", "ani"} {
		rec := sampleRecord()
		rec.Username = name
		rec.LoginTime = time.Date(2024, 5, 1, 8, i, 0, 0, time.UTC)
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	xiaomi := "Xiaomi"
	note := "Redmi Note 11"
	if err := store.Insert(ctx, &models.LoginRecord{
		Username: "cici", ModelCode: "2201117TG", Brand: &xiaomi, MarketingName: &note,
		PriceIDR: 2_499_000, OSType: "android", LoginTime: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	r := NewReports(store, filepath.Join(t.TempDir(), "reports"))
	r.now = func() time.Time { return time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC) }
	return r
}

func TestValueReport(t *testing.T) {
	r := newTestReports(t)
	v, err := r.ValueReport(context.Background())
	if err != nil {
		t.Fatalf("value report: %v", err)
	}
	if v.TotalLogins != 4 || v.TotalEstimatedValue != 3*12_999_000+2_499_000 {
		t.Fatalf("totals = %+v", v)
	}
	if v.FormattedValue != "Rp 41.496.000" {
		t.Fatalf("formatted = %q", v.FormattedValue)
	}
	if len(v.ByBrand) != 2 || v.ByBrand[0].Brand != "Samsung" || v.ByBrand[0].Count != 3 {
		t.Fatalf("by brand = %+v", v.ByBrand)
	}
}

func TestTopDevices(t *testing.T) {
	r := newTestReports(t)
	top, err := r.TopDevices(context.Background(), 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].MarketingName != "Galaxy S23" || top[0].UniqueUsers != 2 {
		t.Fatalf("top = %+v", top)
	}
}

func TestExportCSV(t *testing.T) {
	r := newTestReports(t)
	path, err := r.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "device_report_20240502_103000.csv" {
		t.Fatalf("path = %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 5 || rows[0][1] != "username" {
		t.Fatalf("rows = %d header = %v", len(rows), rows[0])
	}
	if rows[1][1] != "cici" {
		t.Fatalf("newest row first, got %v", rows[1])
	}
}

func TestExportJSON(t *testing.T) {
	r := newTestReports(t)
	path, err := r.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc struct {
		Statistics models.LoginStats     `json:"statistics"`
		ByBrand    []models.BrandSummary `json:"by_brand"`
		Logs       []models.LoginRecord  `json:"logs"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Statistics.TotalLogins != 4 || len(doc.Logs) != 4 || len(doc.ByBrand) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
}
