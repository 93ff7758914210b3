package models

// Requests for portal and admin HTTP endpoints.

type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=128"`
	Password string `form:"password" json:"password" validate:"max=256"`
}

type DevicesRequest struct {
	Limit int `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type TopDevicesRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=1000"`
}

type ExportRequest struct {
	Format string `param:"format" json:"format" validate:"required,oneof=csv json"`
}

type TestUARequest struct {
	UA string `query:"ua" json:"ua"`
}

type ScrapePriceRequest struct {
	Device string `param:"device" json:"device" validate:"required,min=3,max=200"`
}

type BrandRequest struct {
	Brand string `param:"brand" json:"brand" validate:"required,max=100"`
}
