package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.RecordLogin("android", true)
	r.RecordLogin("android", true)
	r.RecordLogin("ios", false)
	r.RecordPriceSource("tokopedia")
	r.RecordScrape("fetched", 12)
	r.RecordError("price_fetch")

	if got := testutil.ToFloat64(r.logins.WithLabelValues("android", "true")); got != 2 {
		t.Fatalf("android logins = %v", got)
	}
	if got := testutil.ToFloat64(r.logins.WithLabelValues("ios", "false")); got != 1 {
		t.Fatalf("ios logins = %v", got)
	}
	if got := testutil.ToFloat64(r.scrapes.WithLabelValues("fetched")); got != 1 {
		t.Fatalf("scrapes = %v", got)
	}
	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("price_fetch")); got != 1 {
		t.Fatalf("errors = %v", got)
	}
}
