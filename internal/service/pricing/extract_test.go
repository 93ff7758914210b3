package pricing

import (
	"reflect"
	"testing"
)

func TestExtractPrices(t *testing.T) {
	page := []byte(`<html><body>
<div class="prd"><span>Samsung Galaxy S23</span><span>Rp12.999.000</span></div>
<div class="prd"><span>Rp 13.500.000</span></div>
<div class="prd"><span>Rp&nbsp;12.999.000</span></div>
<div class="prd"><span>Casing</span><span>Rp25.000</span></div>
<div class="prd"><span>Rp 250.000.000</span></div>
<script>window.__STATE__={"price":"Rp11,750,000"}</script>
</body></html>`)
	got := ExtractPrices(page, DefaultPriceMin, DefaultPriceMax)
	want := []int64{12_999_000, 13_500_000, 11_750_000}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("prices = %v, want %v", got, want)
	}
}

func TestExtractPricesNone(t *testing.T) {
	if got := ExtractPrices([]byte("<html><body>Tidak ada hasil</body></html>"), DefaultPriceMin, DefaultPriceMax); len(got) != 0 {
		t.Fatalf("expected no prices, got %v", got)
	}
	if got := ExtractPrices(nil, DefaultPriceMin, DefaultPriceMax); len(got) != 0 {
		t.Fatalf("expected no prices for empty page, got %v", got)
	}
}
