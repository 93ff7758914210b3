// Package pricing samples listing prices from a retail search page and
// turns them into a market estimate.
package pricing

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"DevSight/internal/domain/models"
	"DevSight/internal/domain/repository"
	"DevSight/internal/service/ratelimit"
	"DevSight/pkg/cache"
	xhttp "DevSight/pkg/http"
	applogger "DevSight/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultSearchURL     = "https://www.tokopedia.com/search"
	DefaultTimeout       = 10 * time.Second
	DefaultRequestDelay  = time.Second
	DefaultCacheDuration = time.Hour
	DefaultPriceMin      = int64(500_000)
	DefaultPriceMax      = int64(100_000_000)
	DefaultPageSize      = 60

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	minQueryLen = 3
)

// Options tune a Sampler.
type Options struct {
	SearchURL     string
	Timeout       time.Duration
	RequestDelay  time.Duration
	CacheDuration time.Duration
	PriceMin      int64
	PriceMax      int64
	PageSize      int
	UserAgent     string
}

type Option func(*Options)

func WithSearchURL(u string) Option { return func(o *Options) { o.SearchURL = u } }

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithRequestDelay sets the minimum spacing between outbound fetches.
func WithRequestDelay(d time.Duration) Option { return func(o *Options) { o.RequestDelay = d } }

func WithCacheDuration(d time.Duration) Option { return func(o *Options) { o.CacheDuration = d } }

// WithPriceBand sets the plausible price band; observations outside it are dropped.
func WithPriceBand(min, max int64) Option {
	return func(o *Options) {
		o.PriceMin = min
		o.PriceMax = max
	}
}

func WithPageSize(n int) Option { return func(o *Options) { o.PageSize = n } }

func WithUserAgent(ua string) Option { return func(o *Options) { o.UserAgent = ua } }

// Sampler fetches raw price observations for a device name. All fetches go
// through one gate; results are cached per normalized query.
type Sampler struct {
	opts    Options
	client  *xhttp.Client
	cache   cache.Service
	gate    *ratelimit.FetchGate
	flights singleflight.Group
	log     *applogger.Logger
	metrics repository.Metrics
}

// NewSampler wires a sampler over the given cache. metrics may be nil.
func NewSampler(c cache.Service, log *applogger.Logger, metrics repository.Metrics, opts ...Option) *Sampler {
	o := Options{
		SearchURL:     DefaultSearchURL,
		Timeout:       DefaultTimeout,
		RequestDelay:  DefaultRequestDelay,
		CacheDuration: DefaultCacheDuration,
		PriceMin:      DefaultPriceMin,
		PriceMax:      DefaultPriceMax,
		PageSize:      DefaultPageSize,
		UserAgent:     DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = applogger.NewNop()
	}

	client := xhttp.NewClient(
		xhttp.WithTimeout(o.Timeout),
		xhttp.WithHeaders(map[string]string{
			"User-Agent":                o.UserAgent,
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language":           "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
			"Upgrade-Insecure-Requests": "1",
			"Cache-Control":             "max-age=0",
		}),
	)

	return &Sampler{
		opts:    o,
		client:  client,
		cache:   c,
		gate:    ratelimit.NewFetchGate(o.RequestDelay),
		log:     log.With(applogger.String("component", "price_sampler")),
		metrics: metrics,
	}
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// NormalizeQuery drops punctuation, lower-cases and collapses whitespace:
// "Samsung Galaxy S24+" becomes "samsung galaxy s24".
func NormalizeQuery(name string) string {
	cleaned := nonWordRe.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(strings.ToLower(cleaned)), " ")
}

// SearchURL is the human-facing search link for name.
func (s *Sampler) SearchURL(name string) string {
	return s.opts.SearchURL + "?q=" + escapeQuery(NormalizeQuery(name))
}

// fetchURL adds the listing filters: new items only, rating 4+, verified
// sellers, popularity order and a page-size cap.
func (s *Sampler) fetchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("condition", "1")
	v.Set("rt", "4,5")
	v.Set("goldmerchant", "true")
	v.Set("official", "true")
	v.Set("ob", "5")
	v.Set("rows", strconv.Itoa(s.opts.PageSize))
	return s.opts.SearchURL + "?" + v.Encode()
}

// FetchRawPrices returns the plausible prices listed for name, in page order
// without repeats. Failures of any kind yield an empty result.
func (s *Sampler) FetchRawPrices(ctx context.Context, name string) []int64 {
	if len([]rune(strings.TrimSpace(name))) < minQueryLen {
		return nil
	}
	query := NormalizeQuery(name)
	if query == "" {
		return nil
	}

	if prices, ok := s.cached(ctx, query); ok {
		return prices
	}

	// Callers asking for the same query while a fetch is in flight share
	// its result.
	v, _, _ := s.flights.Do(query, func() (interface{}, error) {
		return s.fetch(ctx, query), nil
	})
	prices, _ := v.([]int64)
	return prices
}

func (s *Sampler) cached(ctx context.Context, query string) ([]int64, bool) {
	var prices []int64
	err := s.cache.Get(ctx, query, &prices)
	if err == nil && len(prices) > 0 {
		s.recordScrape("cache_hit", len(prices))
		return prices, true
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("price cache read failed", applogger.String("query", query), applogger.Error(err))
	}
	return nil, false
}

func (s *Sampler) fetch(ctx context.Context, query string) []int64 {
	if err := s.gate.Wait(ctx); err != nil {
		s.log.Warn("price fetch not started", applogger.String("query", query), applogger.Error(err))
		s.recordScrape("cancelled", 0)
		return nil
	}
	// A flight for this query may have filled the cache while we waited.
	if prices, ok := s.cached(ctx, query); ok {
		return prices
	}

	start := time.Now()
	body, err := s.client.Fetch(ctx, &xhttp.RequestOptions{URL: s.fetchURL(query)})
	if s.metrics != nil {
		s.metrics.RecordLatency("price_fetch", time.Since(start).Seconds())
	}
	if err != nil {
		s.log.Warn("price fetch failed", applogger.String("query", query), applogger.Error(err))
		s.recordScrape("error", 0)
		if s.metrics != nil {
			s.metrics.RecordError("price_fetch")
		}
		return nil
	}

	prices := ExtractPrices(body, s.opts.PriceMin, s.opts.PriceMax)
	if len(prices) == 0 {
		s.log.Info("no prices on listing page", applogger.String("query", query))
		s.recordScrape("empty", 0)
		return nil
	}

	if err := s.cache.Set(ctx, query, prices, s.opts.CacheDuration); err != nil {
		s.log.Warn("price cache write failed", applogger.String("query", query), applogger.Error(err))
	}
	s.log.Debug("prices sampled", applogger.String("query", query), applogger.Int("count", len(prices)))
	s.recordScrape("fetched", len(prices))
	return prices
}

// Sample fetches and cleans the observations for name.
func (s *Sampler) Sample(ctx context.Context, name string) models.PriceSample {
	sample := CleanSample(s.FetchRawPrices(ctx, name))
	sample.Query = NormalizeQuery(name)
	return sample
}

// Quote samples name and estimates its market price. ok is false when no
// observation survived.
func (s *Sampler) Quote(ctx context.Context, name string) (*models.MarketEstimate, bool) {
	est := Estimate(s.FetchRawPrices(ctx, name))
	if est == nil {
		return nil, false
	}
	est.SourceURL = s.SearchURL(name)
	return est, true
}

// ClearCache empties the price cache and returns how many entries it held.
func (s *Sampler) ClearCache(ctx context.Context) (int, error) {
	n, err := s.cache.Clear(ctx)
	if err != nil {
		return n, err
	}
	s.log.Info("price cache cleared", applogger.Int("removed", n))
	return n, nil
}

func (s *Sampler) recordScrape(outcome string, n int) {
	if s.metrics != nil {
		s.metrics.RecordScrape(outcome, n)
	}
}

func escapeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}
