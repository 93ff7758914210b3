// Package catalog holds the static device catalog and its lookup rules.
package catalog

import (
	"sort"
	"strings"

	"DevSight/internal/domain/models"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFuzzyThreshold is the minimum similarity FindFuzzy accepts.
const DefaultFuzzyThreshold = 0.6

// Catalog is an immutable device index. Safe for concurrent readers.
type Catalog struct {
	index   map[string]*models.CatalogEntry
	entries []*models.CatalogEntry // distinct (brand, code) in load order
	prices  map[string]priceRow
	skipped int
}

type priceRow struct {
	price int64
	year  int
}

type entryKey struct {
	brand string
	code  string
}

// Empty returns a catalog with no entries.
func Empty() *Catalog {
	return &Catalog{
		index:  map[string]*models.CatalogEntry{},
		prices: map[string]priceRow{},
	}
}

func build(devices []models.CatalogEntry, prices map[string]priceRow, skipped int) *Catalog {
	c := &Catalog{
		index:   make(map[string]*models.CatalogEntry, len(devices)*3),
		prices:  prices,
		skipped: skipped,
	}
	if c.prices == nil {
		c.prices = map[string]priceRow{}
	}
	pos := make(map[entryKey]int, len(devices))
	for i := range devices {
		e := devices[i]
		if e.MarketingName == "" {
			e.MarketingName = e.ModelCode
		}
		if p, ok := c.prices[strings.ToLower(e.MarketingName)]; ok {
			e.ReferencePriceIDR = p.price
			e.Year = p.year
		}
		entry := &e
		for _, key := range []string{e.ModelCode, strings.ToUpper(e.ModelCode), strings.ToLower(e.ModelCode)} {
			c.index[key] = entry
		}
		// A repeated (brand, code) keeps its first position but takes the
		// later row, matching the index.
		k := entryKey{brand: e.Brand, code: e.ModelCode}
		if at, dup := pos[k]; dup {
			c.entries[at] = entry
			continue
		}
		pos[k] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c
}

// FindExact looks token up as given, then upper-cased, then lower-cased.
func (c *Catalog) FindExact(token string) (models.CatalogEntry, bool) {
	if token == "" {
		return models.CatalogEntry{}, false
	}
	for _, key := range []string{token, strings.ToUpper(token), strings.ToLower(token)} {
		if e, ok := c.index[key]; ok {
			return *e, true
		}
	}
	return models.CatalogEntry{}, false
}

// FindFuzzy falls back to a similarity scan over model codes and marketing
// names when FindExact misses. Ties keep the first entry seen.
// Only diagnostics call this; login lookups stay exact.
func (c *Catalog) FindFuzzy(query string, threshold float64) (models.CatalogEntry, bool) {
	if e, ok := c.FindExact(query); ok {
		return e, true
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.CatalogEntry{}, false
	}
	qs := chars(q)

	var best *models.CatalogEntry
	bestScore := 0.0
	for _, e := range c.entries {
		score := ratio(qs, strings.ToLower(e.ModelCode))
		if s := ratio(qs, strings.ToLower(e.MarketingName)); s > score {
			score = s
		}
		if score > bestScore && score >= threshold {
			best, bestScore = e, score
		}
	}
	if best == nil {
		return models.CatalogEntry{}, false
	}
	return *best, true
}

// Similarity returns the SequenceMatcher ratio of a and b, case-folded.
func Similarity(a, b string) float64 {
	return ratio(chars(strings.ToLower(a)), strings.ToLower(b))
}

func ratio(a []string, b string) float64 {
	return difflib.NewMatcher(a, chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// PriceFor returns the reference price recorded for a marketing name.
func (c *Catalog) PriceFor(marketingName string) (int64, bool) {
	p, ok := c.prices[strings.ToLower(strings.TrimSpace(marketingName))]
	return p.price, ok
}

func (c *Catalog) Brands() []string {
	set := map[string]struct{}{}
	for _, e := range c.entries {
		if e.Brand != "" {
			set[e.Brand] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// DevicesByBrand lists entries of brand, matched case-insensitively, one per
// model code.
func (c *Catalog) DevicesByBrand(brand string) []models.CatalogEntry {
	out := []models.CatalogEntry{}
	seen := map[string]struct{}{}
	for _, e := range c.entries {
		if !strings.EqualFold(e.Brand, brand) {
			continue
		}
		if _, ok := seen[e.ModelCode]; ok {
			continue
		}
		seen[e.ModelCode] = struct{}{}
		out = append(out, *e)
	}
	return out
}

func (c *Catalog) Stats() models.CatalogStats {
	withPrice := 0
	for _, e := range c.entries {
		if e.ReferencePriceIDR > 0 {
			withPrice++
		}
	}
	return models.CatalogStats{
		TotalDevices:     len(c.entries),
		TotalBrands:      len(c.Brands()),
		DevicesWithPrice: withPrice,
		TotalPrices:      len(c.prices),
	}
}

// Len is the number of distinct entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Skipped is the number of malformed rows dropped at load.
func (c *Catalog) Skipped() int { return c.skipped }
