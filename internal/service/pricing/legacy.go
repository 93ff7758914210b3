package pricing

import "DevSight/internal/domain/models"

// ToLegacy converts an estimate into the min/max/avg shape. Avg is the
// integer mean of the cleaned sample.
func ToLegacy(est *models.MarketEstimate, sample models.PriceSample) models.LegacyPrice {
	if est == nil {
		return models.LegacyPrice{}
	}
	var sum int64
	for _, p := range sample.Cleaned {
		sum += p
	}
	avg := est.CentralPrice
	if len(sample.Cleaned) > 0 {
		avg = sum / int64(len(sample.Cleaned))
	}
	return models.LegacyPrice{
		Min:          est.MinPrice,
		Max:          est.MaxPrice,
		Avg:          avg,
		ProductCount: est.SampleCount,
		ScrapedAt:    est.EstimatedAt,
	}
}
