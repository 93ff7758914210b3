package pricing

import (
	"bytes"
	"regexp"
	"strings"

	"DevSight/pkg/util"

	"golang.org/x/net/html"
)

var rupiahRe = regexp.MustCompile(`Rp[\s\x{00a0}]*[\d.,]+`)

// ExtractPrices finds every "Rp 1.234.567" style amount in an HTML page and
// keeps those within [min, max], first occurrence first.
func ExtractPrices(page []byte, min, max int64) []int64 {
	text := pageText(page)
	var out []int64
	seen := map[int64]struct{}{}
	for _, m := range rupiahRe.FindAllString(text, -1) {
		v, ok := util.ParseRupiah(m)
		if !ok || v < min || v > max {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// pageText concatenates the text nodes of page, script bodies included,
// since listing data is often embedded as JSON. A malformed tail ends the
// scan with whatever was read.
func pageText(page []byte) string {
	z := html.NewTokenizer(bytes.NewReader(page))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
