package util

import (
	"reflect"
	"testing"
)

func TestTrimQuotes(t *testing.T) {
	if got := TrimQuotes(` "SM-G991B" `); got != "SM-G991B" {
		t.Fatalf("unexpected %q", got)
	}
	if got := TrimQuotes(`""`); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestParseRupiah(t *testing.T) {
	cases := map[string]int64{
		"Rp 1.234.567": 1234567,
		"Rp2.500.000":  2500000,
		"3,100,000":    3100000,
	}
	for in, want := range cases {
		got, ok := ParseRupiah(in)
		if !ok || got != want {
			t.Errorf("ParseRupiah(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	if _, ok := ParseRupiah("Rp"); ok {
		t.Fatalf("expected failure for bare currency")
	}
	if _, ok := ParseRupiah("abc"); ok {
		t.Fatalf("expected failure for non-numeric")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected %v", got)
	}
}
