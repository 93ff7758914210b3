package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func utf16LE(t *testing.T, s string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func TestConvertKeepsCompleteRows(t *testing.T) {
	src := "Retail Branding,Marketing Name,Device,Model\n" +
		"Samsung,Galaxy S23,dm1q,SM-S911B\n" +
		"Xiaomi,,fleur,2201117TG\n" +
		" Google , Pixel 7 Pro ,cheetah, Pixel 7 Pro \n" +
		",Nameless,x,ABC123\n"

	var out bytes.Buffer
	n, err := convert(bytes.NewReader(utf16LE(t, src)), &out)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d", n)
	}
	want := "Brand,Model_Code,Marketing_Name\n" +
		"Samsung,SM-S911B,Galaxy S23\n" +
		"Google,Pixel 7 Pro,Pixel 7 Pro\n"
	if out.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestConvertMissingColumn(t *testing.T) {
	src := "Retail Branding,Device\nSamsung,dm1q\n"
	_, err := convert(bytes.NewReader(utf16LE(t, src)), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "Marketing Name") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}
