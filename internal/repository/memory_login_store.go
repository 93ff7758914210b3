package repository

import (
	"context"
	"sort"
	"sync"

	"DevSight/internal/domain/models"
	"DevSight/internal/domain/repository"
)

// MemoryLoginStore keeps logins in a slice, oldest first.
type MemoryLoginStore struct {
	mu      sync.RWMutex
	records []models.LoginRecord
}

func NewMemoryLoginStore() *MemoryLoginStore {
	return &MemoryLoginStore{}
}

var _ repository.LoginStore = (*MemoryLoginStore)(nil)

func (s *MemoryLoginStore) Init(context.Context) error { return nil }

func (s *MemoryLoginStore) Insert(_ context.Context, r *models.LoginRecord) error {
	s.mu.Lock()
	s.records = append(s.records, *r)
	s.mu.Unlock()
	return nil
}

func (s *MemoryLoginStore) Recent(_ context.Context, limit int) ([]models.LoginRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.LoginRecord, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	// equal timestamps keep insertion order reversed
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoginTime.After(out[j].LoginTime)
	})
	return out, nil
}

// DeviceSummary groups by brand and marketing name. Model code and price
// come from the first login of the group.
func (s *MemoryLoginStore) DeviceSummary(_ context.Context) ([]models.DeviceSummary, error) {
	type key struct{ brand, name string }

	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := map[key]*models.DeviceSummary{}
	users := map[key]map[string]struct{}{}
	var order []key
	for i := range s.records {
		r := &s.records[i]
		name := r.Marketing()
		if name == "" {
			continue
		}
		k := key{r.BrandName(), name}
		g, ok := groups[k]
		if !ok {
			g = &models.DeviceSummary{
				Brand:         k.brand,
				MarketingName: name,
				ModelCode:     r.ModelCode,
				PriceIDR:      r.PriceIDR,
			}
			groups[k] = g
			users[k] = map[string]struct{}{}
			order = append(order, k)
		}
		g.LoginCount++
		users[k][r.Username] = struct{}{}
	}

	out := make([]models.DeviceSummary, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.UniqueUsers = int64(len(users[k]))
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoginCount > out[j].LoginCount })
	return out, nil
}

func (s *MemoryLoginStore) BrandSummary(_ context.Context) ([]models.BrandSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := map[string]*models.BrandSummary{}
	users := map[string]map[string]struct{}{}
	names := map[string]map[string]struct{}{}
	var order []string
	for i := range s.records {
		r := &s.records[i]
		brand := r.BrandName()
		if brand == "" {
			continue
		}
		g, ok := groups[brand]
		if !ok {
			g = &models.BrandSummary{Brand: brand}
			groups[brand] = g
			users[brand] = map[string]struct{}{}
			names[brand] = map[string]struct{}{}
			order = append(order, brand)
		}
		g.LoginCount++
		g.TotalValue += r.PriceIDR
		users[brand][r.Username] = struct{}{}
		if r.MarketingName != nil {
			names[brand][*r.MarketingName] = struct{}{}
		}
	}

	out := make([]models.BrandSummary, 0, len(order))
	for _, b := range order {
		g := groups[b]
		g.UniqueUsers = int64(len(users[b]))
		g.DeviceModels = int64(len(names[b]))
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoginCount > out[j].LoginCount })
	return out, nil
}

func (s *MemoryLoginStore) Stats(_ context.Context) (*models.LoginStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &models.LoginStats{OSBreakdown: map[string]int64{}}
	users := map[string]struct{}{}
	devices := map[string]struct{}{}
	for i := range s.records {
		r := &s.records[i]
		st.TotalLogins++
		st.TotalEstimatedValue += r.PriceIDR
		st.OSBreakdown[r.OSType]++
		users[r.Username] = struct{}{}
		if r.ModelCode != "" {
			devices[r.ModelCode] = struct{}{}
		}
	}
	st.UniqueUsers = int64(len(users))
	st.UniqueDevices = int64(len(devices))
	return st, nil
}

func (s *MemoryLoginStore) Clear(_ context.Context) (int64, error) {
	s.mu.Lock()
	n := len(s.records)
	s.records = nil
	s.mu.Unlock()
	return int64(n), nil
}

func (s *MemoryLoginStore) Health(context.Context) error { return nil }

func (s *MemoryLoginStore) Close() error { return nil }
