package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"DevSight/internal/domain/models"
	"DevSight/pkg/util"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names of the device and price tables.
const (
	ColBrand         = "Brand"
	ColModelCode     = "Model_Code"
	ColMarketingName = "Marketing_Name"
	ColPriceIDR      = "Price_IDR"
	ColYear          = "Year"
)

// Load reads the device table and the optional price table from disk.
// The returned catalog is always usable: on failure it is empty or price-less
// and the error says what went wrong.
func Load(devicesPath, pricesPath string) (*Catalog, error) {
	df, err := os.Open(devicesPath)
	if err != nil {
		return Empty(), fmt.Errorf("open devices: %w", err)
	}
	defer df.Close()

	var pr io.Reader
	var errs []error
	if pricesPath != "" {
		pf, err := os.Open(pricesPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("open prices: %w", err))
		} else {
			defer pf.Close()
			pr = pf
		}
	}

	c, err := LoadReaders(df, pr)
	if err != nil {
		errs = append(errs, err)
	}
	return c, errors.Join(errs...)
}

// LoadReaders builds a catalog from CSV streams. prices may be nil.
func LoadReaders(devices, prices io.Reader) (*Catalog, error) {
	var errs []error
	priceRows := map[string]priceRow{}
	skipped := 0
	if prices != nil {
		rows, n, err := readPrices(prices)
		if err != nil {
			errs = append(errs, fmt.Errorf("read prices: %w", err))
		}
		priceRows, skipped = rows, n
	}

	entries, n, err := readDevices(devices)
	if err != nil {
		return build(nil, priceRows, skipped), errors.Join(append(errs, fmt.Errorf("read devices: %w", err))...)
	}
	return build(entries, priceRows, skipped+n), errors.Join(errs...)
}

func readDevices(r io.Reader) ([]models.CatalogEntry, int, error) {
	var out []models.CatalogEntry
	skipped, err := eachRow(r, []string{ColModelCode}, func(row map[string]string) bool {
		code := row[ColModelCode]
		if code == "" {
			return false
		}
		out = append(out, models.CatalogEntry{
			Brand:         row[ColBrand],
			ModelCode:     code,
			MarketingName: row[ColMarketingName],
		})
		return true
	})
	return out, skipped, err
}

func readPrices(r io.Reader) (map[string]priceRow, int, error) {
	out := map[string]priceRow{}
	skipped, err := eachRow(r, []string{ColMarketingName, ColPriceIDR}, func(row map[string]string) bool {
		name := strings.ToLower(row[ColMarketingName])
		price, ok := util.ParseRupiah(row[ColPriceIDR])
		if name == "" || !ok {
			return false
		}
		year, _ := strconv.Atoi(row[ColYear])
		out[name] = priceRow{price: price, year: year}
		return true
	})
	return out, skipped, err
}

// eachRow feeds every record of a headed CSV to fn as a column map. Rows that
// fail to parse or that fn rejects are counted and skipped.
func eachRow(r io.Reader, required []string, fn func(map[string]string) bool) (int, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
	}

	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return skipped, err
		}
		row := make(map[string]string, len(cols))
		for name, i := range cols {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			}
		}
		if !fn(row) {
			skipped++
		}
	}
	return skipped, nil
}
