package models

import "time"

// LoginRecord is one persisted portal login.
type LoginRecord struct {
	ID                 string      `json:"id"`
	Username           string      `json:"username"`
	UserAgent          string      `json:"user_agent"`
	ModelCode          string      `json:"model_code"`
	Brand              *string     `json:"brand"`
	MarketingName      *string     `json:"marketing_name"`
	PriceIDR           int64       `json:"price_idr"`
	OSType             string      `json:"os_type"`
	OSVersion          string      `json:"os_version"`
	Browser            string      `json:"browser"`
	IPAddress          string      `json:"ip_address"`
	ScrapedPriceMin    *int64      `json:"scraped_price_min"`
	ScrapedPriceMax    *int64      `json:"scraped_price_max"`
	ScrapedPriceMedian *int64      `json:"scraped_price_median"`
	ScrapeConfidence   *string     `json:"scrape_confidence"`
	ScrapeSampleCount  *int        `json:"scrape_sample_count"`
	PriceSource        PriceSource `json:"price_source"`
	SearchURL          *string     `json:"tokopedia_url"`
	LoginTime          time.Time   `json:"login_time"`
}

// BrandName returns the brand or "" when unmatched.
func (r *LoginRecord) BrandName() string {
	if r.Brand == nil {
		return ""
	}
	return *r.Brand
}

func (r *LoginRecord) Marketing() string {
	if r.MarketingName == nil {
		return ""
	}
	return *r.MarketingName
}

type DeviceSummary struct {
	Brand         string `json:"brand"`
	MarketingName string `json:"marketing_name"`
	ModelCode     string `json:"model_code"`
	PriceIDR      int64  `json:"price_idr"`
	LoginCount    int64  `json:"login_count"`
	UniqueUsers   int64  `json:"unique_users"`
}

type BrandSummary struct {
	Brand        string `json:"brand"`
	LoginCount   int64  `json:"login_count"`
	UniqueUsers  int64  `json:"unique_users"`
	DeviceModels int64  `json:"device_models"`
	TotalValue   int64  `json:"total_value"`
}

type LoginStats struct {
	TotalLogins         int64            `json:"total_logins"`
	UniqueUsers         int64            `json:"unique_users"`
	UniqueDevices       int64            `json:"unique_devices"`
	TotalEstimatedValue int64            `json:"total_estimated_value"`
	OSBreakdown         map[string]int64 `json:"os_breakdown"`
}

// IdentifyResult is the outcome of one pass of the identification pipeline.
type IdentifyResult struct {
	Signature   DeviceSignature `json:"signature"`
	Candidates  []string        `json:"candidates"`
	Entry       *CatalogEntry   `json:"entry,omitempty"`
	Estimate    *MarketEstimate `json:"estimate,omitempty"`
	PriceSource PriceSource     `json:"price_source"`
	SearchURL   string          `json:"search_url,omitempty"`
}

// Matched reports whether a catalog entry was found.
func (r IdentifyResult) Matched() bool { return r.Entry != nil }
