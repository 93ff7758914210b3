package repository

import (
	"context"
	"database/sql"
	"fmt"

	"DevSight/internal/domain/models"
	"DevSight/internal/domain/repository"
)

// ClickHouseLoginStore keeps logins in a MergeTree table. Optional fields are
// stored as '' or 0 and come back as nil.
type ClickHouseLoginStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseLoginStore creates a store over an open ClickHouse pool.
func NewClickHouseLoginStore(db *sql.DB, table string) *ClickHouseLoginStore {
	return &ClickHouseLoginStore{db: db, table: table}
}

var _ repository.LoginStore = (*ClickHouseLoginStore)(nil)

// SchemaStatements returns the DDL for the login table.
func (s *ClickHouseLoginStore) SchemaStatements() []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id String,
	username String,
	ip_address String,
	user_agent String,
	model_code String,
	brand String,
	marketing_name String,
	os_type LowCardinality(String),
	os_version String,
	browser LowCardinality(String),
	price_idr Int64,
	scraped_price_min Int64,
	scraped_price_max Int64,
	scraped_price_median Int64,
	scrape_confidence LowCardinality(String),
	scrape_sample_count Int32,
	price_source LowCardinality(String),
	tokopedia_url String,
	login_time DateTime64(3)
) ENGINE = MergeTree
ORDER BY (login_time, id)`, s.table)}
}

func (s *ClickHouseLoginStore) Init(ctx context.Context) error {
	for _, stmt := range s.SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseLoginStore) Insert(ctx context.Context, r *models.LoginRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, username, ip_address, user_agent, model_code, brand, marketing_name,
	os_type, os_version, browser, price_idr, scraped_price_min, scraped_price_max, scraped_price_median,
	scrape_confidence, scrape_sample_count, price_source, tokopedia_url, login_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		r.ID,
		r.Username,
		r.IPAddress,
		r.UserAgent,
		r.ModelCode,
		r.BrandName(),
		r.Marketing(),
		r.OSType,
		r.OSVersion,
		r.Browser,
		r.PriceIDR,
		derefInt64(r.ScrapedPriceMin),
		derefInt64(r.ScrapedPriceMax),
		derefInt64(r.ScrapedPriceMedian),
		derefString(r.ScrapeConfidence),
		int32(derefInt(r.ScrapeSampleCount)),
		string(r.PriceSource),
		derefString(r.SearchURL),
		r.LoginTime,
	)
	if err != nil {
		return fmt.Errorf("insert login: %w", err)
	}
	return nil
}

func (s *ClickHouseLoginStore) Recent(ctx context.Context, limit int) ([]models.LoginRecord, error) {
	q := fmt.Sprintf(`SELECT id, username, ip_address, user_agent, model_code, brand, marketing_name,
	os_type, os_version, browser, price_idr, scraped_price_min, scraped_price_max, scraped_price_median,
	scrape_confidence, scrape_sample_count, price_source, tokopedia_url, login_time
	FROM %s ORDER BY login_time DESC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query logins: %w", err)
	}
	defer rows.Close()

	var out []models.LoginRecord
	for rows.Next() {
		var (
			r                       models.LoginRecord
			brand, name, conf, link string
			source                  string
			minP, maxP, medP        int64
			samples                 int32
		)
		if err := rows.Scan(&r.ID, &r.Username, &r.IPAddress, &r.UserAgent, &r.ModelCode, &brand, &name,
			&r.OSType, &r.OSVersion, &r.Browser, &r.PriceIDR, &minP, &maxP, &medP,
			&conf, &samples, &source, &link, &r.LoginTime); err != nil {
			return nil, fmt.Errorf("scan login: %w", err)
		}
		r.Brand = optString(brand)
		r.MarketingName = optString(name)
		r.ScrapedPriceMin = optInt64(minP)
		r.ScrapedPriceMax = optInt64(maxP)
		r.ScrapedPriceMedian = optInt64(medP)
		r.ScrapeConfidence = optString(conf)
		r.ScrapeSampleCount = optInt(int(samples))
		r.PriceSource = models.PriceSource(source)
		r.SearchURL = optString(link)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseLoginStore) DeviceSummary(ctx context.Context) ([]models.DeviceSummary, error) {
	q := fmt.Sprintf(`SELECT brand, marketing_name, any(model_code), toInt64(any(price_idr)),
	toInt64(count()) AS login_count, toInt64(uniqExact(username))
	FROM %s WHERE marketing_name != ''
	GROUP BY brand, marketing_name
	ORDER BY login_count DESC`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("device summary: %w", err)
	}
	defer rows.Close()

	var out []models.DeviceSummary
	for rows.Next() {
		var d models.DeviceSummary
		if err := rows.Scan(&d.Brand, &d.MarketingName, &d.ModelCode, &d.PriceIDR, &d.LoginCount, &d.UniqueUsers); err != nil {
			return nil, fmt.Errorf("scan device summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *ClickHouseLoginStore) BrandSummary(ctx context.Context) ([]models.BrandSummary, error) {
	q := fmt.Sprintf(`SELECT brand, toInt64(count()) AS login_count, toInt64(uniqExact(username)),
	toInt64(uniqExactIf(marketing_name, marketing_name != '')), toInt64(sum(price_idr))
	FROM %s WHERE brand != ''
	GROUP BY brand
	ORDER BY login_count DESC`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("brand summary: %w", err)
	}
	defer rows.Close()

	var out []models.BrandSummary
	for rows.Next() {
		var b models.BrandSummary
		if err := rows.Scan(&b.Brand, &b.LoginCount, &b.UniqueUsers, &b.DeviceModels, &b.TotalValue); err != nil {
			return nil, fmt.Errorf("scan brand summary: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *ClickHouseLoginStore) Stats(ctx context.Context) (*models.LoginStats, error) {
	st := &models.LoginStats{OSBreakdown: map[string]int64{}}
	q := fmt.Sprintf(`SELECT toInt64(count()), toInt64(uniqExact(username)),
	toInt64(uniqExactIf(model_code, model_code != '')), toInt64(sum(price_idr)) FROM %s`, s.table)
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.TotalLogins, &st.UniqueUsers, &st.UniqueDevices, &st.TotalEstimatedValue); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT os_type, toInt64(count()) FROM %s GROUP BY os_type`, s.table))
	if err != nil {
		return nil, fmt.Errorf("os breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			os string
			n  int64
		)
		if err := rows.Scan(&os, &n); err != nil {
			return nil, fmt.Errorf("scan os breakdown: %w", err)
		}
		st.OSBreakdown[os] = n
	}
	return st, rows.Err()
}

// Clear counts the rows and truncates the table.
func (s *ClickHouseLoginStore) Clear(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT toInt64(count()) FROM %s`, s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count logins: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`TRUNCATE TABLE %s`, s.table)); err != nil {
		return 0, fmt.Errorf("truncate logins: %w", err)
	}
	return n, nil
}

func (s *ClickHouseLoginStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseLoginStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}
