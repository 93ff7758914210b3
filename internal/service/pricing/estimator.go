package pricing

import (
	"math"
	"slices"
	"time"

	"DevSight/internal/domain/models"
)

const (
	TrimBottomPercent = 0.15
	TrimTopPercent    = 0.15
	// MinSamples is the smallest cleaned sample worth keeping; below it the
	// full sorted sample is used instead.
	MinSamples = 5
	// HighConfidenceSamples is the cleaned size at which confidence is high.
	HighConfidenceSamples = 10

	priceUnit = 1000
)

var now = time.Now

// CleanSample sorts raw and trims a fixed share off each end. From six
// observations up at least one is trimmed per side.
func CleanSample(raw []int64) models.PriceSample {
	sorted := slices.Clone(raw)
	slices.Sort(sorted)

	n := len(sorted)
	cutBottom := int(math.Floor(float64(n) * TrimBottomPercent))
	cutTop := int(math.Floor(float64(n) * TrimTopPercent))
	if n >= 6 {
		cutBottom = max(1, cutBottom)
		cutTop = max(1, cutTop)
	}

	cleaned := sorted
	if n-cutBottom-cutTop >= MinSamples {
		cleaned = sorted[cutBottom : n-cutTop]
	}
	return models.PriceSample{
		Raw:     slices.Clone(raw),
		Cleaned: slices.Clone(cleaned),
	}
}

// Estimate computes the market estimate of raw. It returns nil for an empty
// sample.
func Estimate(raw []int64) *models.MarketEstimate {
	if len(raw) == 0 {
		return nil
	}
	return EstimateSample(CleanSample(raw))
}

// EstimateSample builds the estimate from an already cleaned sample.
func EstimateSample(s models.PriceSample) *models.MarketEstimate {
	if len(s.Cleaned) == 0 {
		return nil
	}
	cleaned := s.Cleaned
	if !slices.IsSorted(cleaned) {
		cleaned = slices.Clone(cleaned)
		slices.Sort(cleaned)
	}
	lo, hi := cleaned[0], cleaned[len(cleaned)-1]

	central := roundToUnit(median(cleaned), priceUnit)
	central = min(max(central, lo), hi)

	return &models.MarketEstimate{
		CentralPrice: central,
		MinPrice:     lo,
		MaxPrice:     hi,
		SampleCount:  len(cleaned),
		RawCount:     max(len(s.Raw), len(cleaned)),
		Confidence:   ConfidenceFor(len(cleaned)),
		EstimatedAt:  now(),
	}
}

// ConfidenceFor maps a cleaned sample size to a confidence label.
func ConfidenceFor(n int) models.Confidence {
	switch {
	case n >= HighConfidenceSamples:
		return models.ConfidenceHigh
	case n >= MinSamples:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func median(sorted []int64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

func roundToUnit(v float64, unit int64) int64 {
	return int64(math.Round(v/float64(unit))) * unit
}
