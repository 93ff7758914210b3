package models

import "time"

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// PriceSource tells where the price attached to a login came from.
type PriceSource string

const (
	PriceSourceTokopedia PriceSource = "tokopedia"
	PriceSourceDatabase  PriceSource = "database"
	PriceSourceNone      PriceSource = "none"
)

// PriceSample holds the raw observations for one query and the subset kept
// after outlier trimming.
type PriceSample struct {
	Query   string  `json:"query"`
	Raw     []int64 `json:"raw"`
	Cleaned []int64 `json:"cleaned"`
}

// MarketEstimate is the canonical market price result.
type MarketEstimate struct {
	CentralPrice int64      `json:"central_price"`
	MinPrice     int64      `json:"min_price"`
	MaxPrice     int64      `json:"max_price"`
	SampleCount  int        `json:"sample_count"`
	RawCount     int        `json:"raw_count"`
	Confidence   Confidence `json:"confidence"`
	SourceURL    string     `json:"source_url,omitempty"`
	EstimatedAt  time.Time  `json:"estimated_at"`
}

// LegacyPrice is the min/max/avg shape returned by the manual scrape endpoint.
type LegacyPrice struct {
	Min          int64     `json:"min"`
	Max          int64     `json:"max"`
	Avg          int64     `json:"avg"`
	ProductCount int       `json:"product_count"`
	ScrapedAt    time.Time `json:"scraped_at"`
}
