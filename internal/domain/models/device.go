package models

// Platform is the operating-system family inferred from a User-Agent.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformOther   Platform = "other"
	PlatformUnknown Platform = "unknown"
)

// Model token placeholders. None of them is a real catalog key.
const (
	TokenUnknown       = "Unknown"
	TokenAndroidDevice = "Android Device"
	TokenReducedUA     = "K" // Chrome reduced UA hides the model behind "K"
)

// DeviceSignature is the normalized result of parsing one User-Agent.
type DeviceSignature struct {
	ModelToken        string   `json:"model_token"`
	Platform          Platform `json:"platform"`
	PlatformVersion   string   `json:"platform_version,omitempty"`
	ClientApplication string   `json:"client_application,omitempty"`
	RawInput          string   `json:"raw_input"`
}

// CatalogEntry is one row of the static device catalog joined with its
// reference price.
type CatalogEntry struct {
	Brand             string `json:"brand"`
	ModelCode         string `json:"model_code"`
	MarketingName     string `json:"marketing_name"`
	ReferencePriceIDR int64  `json:"price_idr"`
	Year              int    `json:"year,omitempty"`
}

type CatalogStats struct {
	TotalDevices     int `json:"total_devices"`
	TotalBrands      int `json:"total_brands"`
	DevicesWithPrice int `json:"devices_with_price"`
	TotalPrices      int `json:"total_prices"`
}
