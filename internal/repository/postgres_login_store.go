package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"DevSight/internal/domain/models"
	"DevSight/internal/domain/repository"
)

const loginColumns = `id, username, ip_address, user_agent, model_code, brand, marketing_name,
	os_type, os_version, browser, price_idr, scraped_price_min, scraped_price_max, scraped_price_median,
	scrape_confidence, scrape_sample_count, price_source, tokopedia_url, login_time`

// PostgresLoginStore keeps logins in PostgreSQL through a pgx pool.
type PostgresLoginStore struct {
	pool  *pgxpool.Pool
	table string
}

var _ repository.LoginStore = (*PostgresLoginStore)(nil)

// NewPostgresLoginStore connects to dsn and checks the connection.
func NewPostgresLoginStore(ctx context.Context, dsn, table string) (*PostgresLoginStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresLoginStore{pool: pool, table: table}, nil
}

func (s *PostgresLoginStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	ip_address TEXT,
	user_agent TEXT,
	model_code TEXT,
	brand TEXT,
	marketing_name TEXT,
	os_type TEXT,
	os_version TEXT,
	browser TEXT,
	price_idr BIGINT NOT NULL DEFAULT 0,
	scraped_price_min BIGINT,
	scraped_price_max BIGINT,
	scraped_price_median BIGINT,
	scrape_confidence TEXT,
	scrape_sample_count INTEGER,
	price_source TEXT NOT NULL DEFAULT 'none',
	tokopedia_url TEXT,
	login_time TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_login_time_idx ON %s (login_time DESC)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresLoginStore) Insert(ctx context.Context, r *models.LoginRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s (%s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`, s.table, loginColumns)
	_, err := s.pool.Exec(ctx, q,
		r.ID, r.Username, r.IPAddress, r.UserAgent, r.ModelCode, r.Brand, r.MarketingName,
		r.OSType, r.OSVersion, r.Browser, r.PriceIDR,
		r.ScrapedPriceMin, r.ScrapedPriceMax, r.ScrapedPriceMedian,
		r.ScrapeConfidence, r.ScrapeSampleCount, string(r.PriceSource), r.SearchURL, r.LoginTime,
	)
	if err != nil {
		return fmt.Errorf("insert login: %w", err)
	}
	return nil
}

func (s *PostgresLoginStore) Recent(ctx context.Context, limit int) ([]models.LoginRecord, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY login_time DESC LIMIT $1`, loginColumns, s.table)
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query logins: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LoginRecord, error) {
		var (
			r                           models.LoginRecord
			ip, ua, code, osType, osVer *string
			browser                     *string
			source                      string
		)
		err := row.Scan(&r.ID, &r.Username, &ip, &ua, &code, &r.Brand, &r.MarketingName,
			&osType, &osVer, &browser, &r.PriceIDR,
			&r.ScrapedPriceMin, &r.ScrapedPriceMax, &r.ScrapedPriceMedian,
			&r.ScrapeConfidence, &r.ScrapeSampleCount, &source, &r.SearchURL, &r.LoginTime)
		r.IPAddress = derefString(ip)
		r.UserAgent = derefString(ua)
		r.ModelCode = derefString(code)
		r.OSType = derefString(osType)
		r.OSVersion = derefString(osVer)
		r.Browser = derefString(browser)
		r.PriceSource = models.PriceSource(source)
		return r, err
	})
}

func (s *PostgresLoginStore) DeviceSummary(ctx context.Context) ([]models.DeviceSummary, error) {
	q := fmt.Sprintf(`SELECT COALESCE(brand, ''), marketing_name, COALESCE(MIN(model_code), ''), COALESCE(MAX(price_idr), 0),
	COUNT(*) AS login_count, COUNT(DISTINCT username)
	FROM %s WHERE marketing_name IS NOT NULL AND marketing_name != ''
	GROUP BY brand, marketing_name
	ORDER BY login_count DESC`, s.table)
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("device summary: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DeviceSummary, error) {
		var d models.DeviceSummary
		err := row.Scan(&d.Brand, &d.MarketingName, &d.ModelCode, &d.PriceIDR, &d.LoginCount, &d.UniqueUsers)
		return d, err
	})
}

func (s *PostgresLoginStore) BrandSummary(ctx context.Context) ([]models.BrandSummary, error) {
	q := fmt.Sprintf(`SELECT brand, COUNT(*) AS login_count, COUNT(DISTINCT username),
	COUNT(DISTINCT marketing_name), COALESCE(SUM(price_idr), 0)::BIGINT
	FROM %s WHERE brand IS NOT NULL AND brand != ''
	GROUP BY brand
	ORDER BY login_count DESC`, s.table)
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("brand summary: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BrandSummary, error) {
		var b models.BrandSummary
		err := row.Scan(&b.Brand, &b.LoginCount, &b.UniqueUsers, &b.DeviceModels, &b.TotalValue)
		return b, err
	})
}

func (s *PostgresLoginStore) Stats(ctx context.Context) (*models.LoginStats, error) {
	st := &models.LoginStats{OSBreakdown: map[string]int64{}}
	q := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT username),
	COUNT(DISTINCT NULLIF(model_code, '')), COALESCE(SUM(price_idr), 0)::BIGINT FROM %s`, s.table)
	if err := s.pool.QueryRow(ctx, q).Scan(&st.TotalLogins, &st.UniqueUsers, &st.UniqueDevices, &st.TotalEstimatedValue); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT COALESCE(os_type, ''), COUNT(*) FROM %s GROUP BY os_type`, s.table))
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

func (s *PostgresLoginStore) Clear(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table))
	if err != nil {
		return 0, fmt.Errorf("clear logins: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresLoginStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresLoginStore) Close() error {
	s.pool.Close()
	return nil
}
