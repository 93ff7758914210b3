package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"DevSight/internal/domain/models"
	"DevSight/internal/service/useragent"
	applogger "DevSight/pkg/logger"
	"DevSight/pkg/util"
)

// DeviceCatalog resolves model codes to catalog entries.
type DeviceCatalog interface {
	FindExact(token string) (models.CatalogEntry, bool)
}

// PriceQuoter produces market estimates for a device name.
type PriceQuoter interface {
	Quote(ctx context.Context, name string) (*models.MarketEstimate, bool)
	SearchURL(name string) string
}

// IdentifyInput is what the portal knows about one request.
type IdentifyInput struct {
	UserAgent string
	ModelHint string // raw Sec-CH-UA-Model value
}

// Identifier runs extraction, catalog lookup and price sampling for one
// request.
type Identifier struct {
	catalog DeviceCatalog
	quoter  PriceQuoter
	log     *applogger.Logger
	now     func() time.Time
}

func NewIdentifier(catalog DeviceCatalog, quoter PriceQuoter, log *applogger.Logger) *Identifier {
	if log == nil {
		log = applogger.NewNop()
	}
	return &Identifier{
		catalog: catalog,
		quoter:  quoter,
		log:     log.With(applogger.String("component", "identifier")),
		now:     time.Now,
	}
}

// Identify never fails. Missing matches and prices show up as absent fields.
func (id *Identifier) Identify(ctx context.Context, in IdentifyInput) models.IdentifyResult {
	sig := useragent.Extract(in.UserAgent)
	if hint := util.TrimQuotes(strings.TrimSpace(in.ModelHint)); hint != "" {
		sig.ModelToken = hint
	}

	res := models.IdentifyResult{
		Signature:   sig,
		Candidates:  id.candidates(sig),
		PriceSource: models.PriceSourceNone,
	}

	for _, code := range res.Candidates {
		if entry, ok := id.catalog.FindExact(code); ok {
			res.Entry = &entry
			break
		}
	}
	if res.Entry == nil || res.Entry.MarketingName == "" {
		return res
	}

	query := res.Entry.Brand + " " + res.Entry.MarketingName
	if est := id.quote(ctx, query); est != nil {
		res.Estimate = est
		res.PriceSource = models.PriceSourceTokopedia
	} else if res.Entry.ReferencePriceIDR > 0 {
		res.PriceSource = models.PriceSourceDatabase
	}
	res.SearchURL = id.quoter.SearchURL(query)
	return res
}

func (id *Identifier) candidates(sig models.DeviceSignature) []string {
	out := useragent.CandidateTokens(sig)
	out = append(out, useragent.ExtractModelCodes(sig.RawInput)...)
	filtered := out[:0]
	for _, c := range out {
		if !useragent.IsPlaceholder(c) {
			filtered = append(filtered, c)
		}
	}
	return util.Dedupe(filtered)
}

// quote degrades any sampler failure, including a panic, to no estimate.
func (id *Identifier) quote(ctx context.Context, query string) (est *models.MarketEstimate) {
	defer func() {
		if r := recover(); r != nil {
			id.log.Error("price sampling panicked",
				applogger.String("query", query),
				applogger.Error(fmt.Errorf("%v", r)))
			est = nil
		}
	}()
	est, ok := id.quoter.Quote(ctx, query)
	if !ok {
		return nil
	}
	return est
}

// BuildRecord turns an identification result into the row that gets stored.
func (id *Identifier) BuildRecord(res models.IdentifyResult, username, ip, hint string) models.LoginRecord {
	sig := res.Signature
	rec := models.LoginRecord{
		ID:          uuid.NewString(),
		Username:    username,
		UserAgent:   sig.RawInput,
		ModelCode:   sig.ModelToken,
		OSType:      string(sig.Platform),
		OSVersion:   sig.PlatformVersion,
		Browser:     sig.ClientApplication,
		IPAddress:   ip,
		PriceSource: res.PriceSource,
		LoginTime:   id.now().UTC(),
	}
	if hint != "" {
		rec.UserAgent += " [CH-Model: " + hint + "]"
	}
	if rec.Browser == "" {
		rec.Browser = useragent.DetectBrowser(sig.RawInput)
	}

	if res.Entry == nil {
		token := sig.ModelToken
		rec.MarketingName = &token
		return rec
	}

	brand, name := res.Entry.Brand, res.Entry.MarketingName
	rec.Brand = &brand
	rec.MarketingName = &name
	rec.PriceIDR = res.Entry.ReferencePriceIDR
	if res.SearchURL != "" {
		link := res.SearchURL
		rec.SearchURL = &link
	}
	if est := res.Estimate; est != nil {
		minP, maxP, central := est.MinPrice, est.MaxPrice, est.CentralPrice
		conf, n := string(est.Confidence), est.SampleCount
		rec.ScrapedPriceMin = &minP
		rec.ScrapedPriceMax = &maxP
		rec.ScrapedPriceMedian = &central
		rec.ScrapeConfidence = &conf
		rec.ScrapeSampleCount = &n
		if est.SourceURL != "" {
			src := est.SourceURL
			rec.SearchURL = &src
		}
	}
	return rec
}
