package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"DevSight/internal/domain/models"
)

const (
	uaS23     = "Mozilla/5.0 (Linux; Android 14; SM-S911B Build/UP1A.231005.007) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaReduced = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"SM-S911B": {Brand: "Samsung", ModelCode: "SM-S911B", MarketingName: "Galaxy S23", ReferencePriceIDR: 12_999_000},
		"SM-A546E": {Brand: "Samsung", ModelCode: "SM-A546E", MarketingName: "Galaxy A54 5G"},
		"2201117TG": {Brand: "Xiaomi", ModelCode: "2201117TG", MarketingName: "Redmi Note 11", ReferencePriceIDR: 2_499_000},
	}
}

func testEstimate() *models.MarketEstimate {
	return &models.MarketEstimate{
		CentralPrice: 11_500_000,
		MinPrice:     10_900_000,
		MaxPrice:     12_400_000,
		SampleCount:  12,
		RawCount:     14,
		Confidence:   models.ConfidenceHigh,
		SourceURL:    "https://shop.test/search?q=samsung%20galaxy%20s23",
		EstimatedAt:  time.Now(),
	}
}

func TestIdentifyMatchedWithEstimate(t *testing.T) {
	q := &fakeQuoter{est: testEstimate()}
	id := NewIdentifier(testCatalog(), q, nil)

	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaS23})
	if !res.Matched() || res.Entry.MarketingName != "Galaxy S23" {
		t.Fatalf("entry = %+v", res.Entry)
	}
	if res.PriceSource != models.PriceSourceTokopedia || res.Estimate == nil {
		t.Fatalf("source = %s estimate = %v", res.PriceSource, res.Estimate)
	}
	if len(q.queries) != 1 || q.queries[0] != "Samsung Galaxy S23" {
		t.Fatalf("queries = %v", q.queries)
	}
	if res.SearchURL == "" {
		t.Fatalf("search url missing")
	}
	if res.Candidates[0] != "SM-S911B" {
		t.Fatalf("candidates = %v", res.Candidates)
	}
}

func TestIdentifyFallsBackToReferencePrice(t *testing.T) {
	id := NewIdentifier(testCatalog(), &fakeQuoter{}, nil)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaS23})
	if res.PriceSource != models.PriceSourceDatabase || res.Estimate != nil {
		t.Fatalf("source = %s", res.PriceSource)
	}
	if res.SearchURL == "" {
		t.Fatalf("search url must be set for matched entries")
	}
}

func TestIdentifyNoPriceAnywhere(t *testing.T) {
	id := NewIdentifier(testCatalog(), &fakeQuoter{}, nil)
	ua := strings.Replace(uaS23, "SM-S911B", "SM-A546E", 1)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: ua})
	if !res.Matched() || res.PriceSource != models.PriceSourceNone {
		t.Fatalf("res = %+v", res)
	}
}

func TestIdentifyHintOverridesReducedUA(t *testing.T) {
	q := &fakeQuoter{}
	id := NewIdentifier(testCatalog(), q, nil)

	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaReduced, ModelHint: `"2201117TG"`})
	if res.Signature.ModelToken != "2201117TG" {
		t.Fatalf("token = %q", res.Signature.ModelToken)
	}
	if !res.Matched() || res.Entry.Brand != "Xiaomi" {
		t.Fatalf("entry = %+v", res.Entry)
	}
	for _, c := range res.Candidates {
		if c == "K" {
			t.Fatalf("placeholder in candidates: %v", res.Candidates)
		}
	}
}

func TestIdentifyReducedUAWithoutHint(t *testing.T) {
	q := &fakeQuoter{}
	id := NewIdentifier(testCatalog(), q, nil)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaReduced})
	if res.Matched() || len(res.Candidates) != 0 {
		t.Fatalf("res = %+v", res)
	}
	if len(q.queries) != 0 {
		t.Fatalf("sampler must not run for unmatched devices")
	}
}

func TestIdentifyRecoversSamplerPanic(t *testing.T) {
	id := NewIdentifier(testCatalog(), &fakeQuoter{panics: true}, nil)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaS23})
	if res.Estimate != nil || res.PriceSource != models.PriceSourceDatabase {
		t.Fatalf("res = %+v", res)
	}
}

func TestBuildRecordMatched(t *testing.T) {
	id := NewIdentifier(testCatalog(), &fakeQuoter{est: testEstimate()}, nil)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaS23, ModelHint: "SM-S911B"})
	rec := id.BuildRecord(res, "ani", "10.0.0.7", "SM-S911B")

	if rec.ID == "" {
		t.Fatalf("id not assigned")
	}
	if !strings.HasSuffix(rec.UserAgent, " [CH-Model: SM-S911B]") {
		t.Fatalf("ua = %q", rec.UserAgent)
	}
	if rec.BrandName() != "Samsung" || rec.Marketing() != "Galaxy S23" || rec.PriceIDR != 12_999_000 {
		t.Fatalf("rec = %+v", rec)
	}
	if rec.ScrapedPriceMedian == nil || *rec.ScrapedPriceMedian != 11_500_000 {
		t.Fatalf("median = %v", rec.ScrapedPriceMedian)
	}
	if rec.ScrapeSampleCount == nil || *rec.ScrapeSampleCount != 12 {
		t.Fatalf("samples = %v", rec.ScrapeSampleCount)
	}
	if rec.OSType != "android" || rec.OSVersion != "14" || rec.Browser != "Chrome" {
		t.Fatalf("os/browser = %s %s %s", rec.OSType, rec.OSVersion, rec.Browser)
	}
	if rec.PriceSource != models.PriceSourceTokopedia {
		t.Fatalf("source = %s", rec.PriceSource)
	}
}

func TestBuildRecordUnmatched(t *testing.T) {
	id := NewIdentifier(testCatalog(), &fakeQuoter{}, nil)
	res := id.Identify(context.Background(), IdentifyInput{UserAgent: uaWindows})
	rec := id.BuildRecord(res, "budi", "10.0.0.8", "")

	if rec.Brand != nil {
		t.Fatalf("brand = %v", *rec.Brand)
	}
	if rec.Marketing() != res.Signature.ModelToken {
		t.Fatalf("marketing = %q, token = %q", rec.Marketing(), res.Signature.ModelToken)
	}
	if rec.PriceIDR != 0 || rec.PriceSource != models.PriceSourceNone || rec.SearchURL != nil {
		t.Fatalf("rec = %+v", rec)
	}
	if strings.Contains(rec.UserAgent, "CH-Model") {
		t.Fatalf("ua annotated without hint: %q", rec.UserAgent)
	}
}
