package usecase

import (
	"context"
	"strings"
	"sync"

	"DevSight/internal/domain/models"
)

type fakeCatalog map[string]models.CatalogEntry

func (f fakeCatalog) FindExact(token string) (models.CatalogEntry, bool) {
	e, ok := f[strings.ToUpper(strings.TrimSpace(token))]
	return e, ok
}

type fakeQuoter struct {
	est     *models.MarketEstimate
	panics  bool
	queries []string
}

func (f *fakeQuoter) Quote(_ context.Context, name string) (*models.MarketEstimate, bool) {
	f.queries = append(f.queries, name)
	if f.panics {
		panic("listing page changed")
	}
	if f.est == nil {
		return nil, false
	}
	e := *f.est
	return &e, true
}

func (f *fakeQuoter) SearchURL(name string) string {
	return "https://shop.test/search?q=" + strings.ToLower(strings.ReplaceAll(name, " ", "%20"))
}

type fakeMetrics struct {
	mu      sync.Mutex
	logins  map[string]int
	sources map[string]int
	errs    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{logins: map[string]int{}, sources: map[string]int{}, errs: map[string]int{}}
}

func (m *fakeMetrics) RecordLogin(platform string, matched bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := platform
	if matched {
		key += ":matched"
	}
	m.logins[key]++
}

func (m *fakeMetrics) RecordPriceSource(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source]++
}

func (m *fakeMetrics) RecordScrape(string, int) {}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakeNotifier struct {
	got []*models.LoginRecord
}

func (n *fakeNotifier) NotifyLogin(r *models.LoginRecord) { n.got = append(n.got, r) }

type fakePublisher struct {
	got []*models.LoginRecord
	err error
}

func (p *fakePublisher) Publish(_ context.Context, r *models.LoginRecord) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, r)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
