package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"DevSight/internal/domain/models"
	"DevSight/pkg/cache"
)

const listingPage = `<html><body>
<div>Rp8.400.000</div><div>Rp8.500.000</div><div>Rp8.600.000</div>
<div>Rp8.700.000</div><div>Rp8.800.000</div><div>Rp4.500.000</div>
<div>Rp11.000.000</div><div>Rp9.000.000</div>
</body></html>`

func newTestSampler(t *testing.T, status int, body string) (*Sampler, *int32, *http.Request) {
	t.Helper()
	var hits int32
	last := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		*last = *r.Clone(context.Background())
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	s := NewSampler(cache.NewMemoryCache(), nil, nil,
		WithSearchURL(srv.URL+"/search"),
		WithRequestDelay(time.Millisecond),
		WithTimeout(2*time.Second),
	)
	return s, &hits, last
}

func TestFetchRawPricesCachesWithinTTL(t *testing.T) {
	s, hits, last := newTestSampler(t, http.StatusOK, listingPage)
	ctx := context.Background()

	first := s.FetchRawPrices(ctx, "Samsung Galaxy S23")
	if len(first) != 8 {
		t.Fatalf("expected 8 prices, got %v", first)
	}
	second := s.FetchRawPrices(ctx, "  samsung   GALAXY s23! ")
	if len(second) != 8 {
		t.Fatalf("expected cached prices, got %v", second)
	}
	if n := atomic.LoadInt32(hits); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}

	q := last.URL.Query()
	if q.Get("q") != "samsung galaxy s23" {
		t.Fatalf("query = %q", q.Get("q"))
	}
	for key, want := range map[string]string{"condition": "1", "ob": "5", "rows": "60"} {
		if q.Get(key) != want {
			t.Errorf("param %s = %q, want %q", key, q.Get(key), want)
		}
	}
	if !strings.Contains(last.Header.Get("User-Agent"), "Chrome/120") {
		t.Fatalf("browser user agent not sent: %q", last.Header.Get("User-Agent"))
	}
	if last.Header.Get("Accept-Language") == "" {
		t.Fatalf("accept-language not sent")
	}
}

func TestFetchRawPricesConcurrentSameQuery(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(listingPage))
	}))
	t.Cleanup(srv.Close)

	s := NewSampler(cache.NewMemoryCache(), nil, nil,
		WithSearchURL(srv.URL+"/search"),
		WithRequestDelay(50*time.Millisecond),
		WithTimeout(2*time.Second),
	)

	const callers = 8
	results := make([][]int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.FetchRawPrices(context.Background(), "Samsung Galaxy S23")
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected one fetch for %d concurrent callers, got %d", callers, n)
	}
	for i, got := range results {
		if len(got) != 8 {
			t.Errorf("caller %d got %v", i, got)
		}
	}
}

func TestFetchRawPricesNon200(t *testing.T) {
	s, hits, _ := newTestSampler(t, http.StatusForbidden, listingPage)
	ctx := context.Background()

	if got := s.FetchRawPrices(ctx, "Galaxy S23"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := s.FetchRawPrices(ctx, "Galaxy S23"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if n := atomic.LoadInt32(hits); n != 2 {
		t.Fatalf("failures must not be cached, got %d fetches", n)
	}
}

func TestFetchRawPricesShortName(t *testing.T) {
	s, hits, _ := newTestSampler(t, http.StatusOK, listingPage)
	if got := s.FetchRawPrices(context.Background(), " ab "); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := s.FetchRawPrices(context.Background(), "!!!???"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Fatalf("expected no fetch, got %d", n)
	}
}

func TestFetchRawPricesTransportError(t *testing.T) {
	s := NewSampler(cache.NewMemoryCache(), nil, nil,
		WithSearchURL("http://127.0.0.1:1/search"),
		WithRequestDelay(time.Millisecond),
		WithTimeout(500*time.Millisecond),
	)
	if got := s.FetchRawPrices(context.Background(), "Galaxy S23"); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestQuoteAndClearCache(t *testing.T) {
	s, hits, _ := newTestSampler(t, http.StatusOK, listingPage)
	ctx := context.Background()

	est, ok := s.Quote(ctx, "Samsung Galaxy S23")
	if !ok {
		t.Fatalf("expected estimate")
	}
	if est.RawCount != 8 || est.SampleCount != 6 {
		t.Fatalf("counts = %d/%d", est.SampleCount, est.RawCount)
	}
	if est.CentralPrice != 8_650_000 {
		t.Fatalf("central = %d", est.CentralPrice)
	}
	if est.Confidence != models.ConfidenceMedium {
		t.Fatalf("confidence = %s", est.Confidence)
	}
	if !strings.HasSuffix(est.SourceURL, "/search?q=samsung%20galaxy%20s23") {
		t.Fatalf("source url = %q", est.SourceURL)
	}

	n, err := s.ClearCache(ctx)
	if err != nil || n != 1 {
		t.Fatalf("clear = %d, %v", n, err)
	}
	s.FetchRawPrices(ctx, "Samsung Galaxy S23")
	if got := atomic.LoadInt32(hits); got != 2 {
		t.Fatalf("expected refetch after clear, got %d fetches", got)
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := map[string]string{
		"Samsung Galaxy S24+":        "samsung galaxy s24",
		"iPhone 15 Pro Max (256GB)":  "iphone 15 pro max 256gb",
		"  Redmi   Note\t11  ":       "redmi note 11",
		"Xiaomi_13T":                 "xiaomi_13t",
	}
	for in, want := range cases {
		if got := NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
