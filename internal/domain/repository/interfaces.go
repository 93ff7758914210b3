package repository

import (
	"context"

	"DevSight/internal/domain/models"
)

// LoginStore persists portal logins and answers the reporting queries.
type LoginStore interface {
	Init(ctx context.Context) error // ensure tables
	Insert(ctx context.Context, r *models.LoginRecord) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]models.LoginRecord, error)
	DeviceSummary(ctx context.Context) ([]models.DeviceSummary, error)
	BrandSummary(ctx context.Context) ([]models.BrandSummary, error)
	Stats(ctx context.Context) (*models.LoginStats, error)
	// Clear deletes every record and reports how many were removed.
	Clear(ctx context.Context) (int64, error)
	Health(ctx context.Context) error
	Close() error
}

// LoginPublisher hands records to an asynchronous writer.
type LoginPublisher interface {
	Publish(ctx context.Context, r *models.LoginRecord) error
	Close() error
}

// LoginNotifier is told about every record once it is stored.
type LoginNotifier interface {
	NotifyLogin(r *models.LoginRecord)
}

type Metrics interface {
	RecordLogin(platform string, matched bool)
	RecordPriceSource(source string)
	RecordScrape(outcome string, samples int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
