// Command catalog-sync downloads the public supported-devices list and
// rewrites it as the catalog's devices CSV.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	xhttp "DevSight/pkg/http"
	applogger "DevSight/pkg/logger"
)

const defaultURL = "http://storage.googleapis.com/play_public/supported_devices.csv"

const (
	srcBrand = "Retail Branding"
	srcName  = "Marketing Name"
	srcModel = "Model"
)

func main() {
	url := flag.String("url", defaultURL, "supported devices CSV (UTF-16)")
	out := flag.String("out", "data/devices.csv", "output path")
	timeout := flag.Duration("timeout", 60*time.Second, "download timeout")
	flag.Parse()

	log, err := applogger.New(&applogger.Config{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), *url, *out, *timeout, log); err != nil {
		log.Error("catalog sync failed", applogger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, url, out string, timeout time.Duration, log *applogger.Logger) error {
	log.Info("downloading device list", applogger.String("url", url))
	client := xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithMaxBody(256<<20))
	body, err := client.Fetch(ctx, &xhttp.RequestOptions{URL: url})
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := out + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	n, err := convert(bytes.NewReader(body), f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, out); err != nil {
		return fmt.Errorf("replace %s: %w", out, err)
	}

	log.Info("devices written", applogger.String("file", out), applogger.Int("rows", n))
	return nil
}

// convert decodes the UTF-16 source table and writes Brand, Model_Code,
// Marketing_Name rows for entries that carry all three values.
func convert(src io.Reader, dst io.Writer) (int, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	r := csv.NewReader(transform.NewReader(src, dec))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{srcBrand, srcName, srcModel} {
		if _, ok := idx[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	w := csv.NewWriter(dst)
	if err := w.Write([]string{"Brand", "Model_Code", "Marketing_Name"}); err != nil {
		return 0, err
	}

	field := func(rec []string, col string) string {
		if i := idx[col]; i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	n := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read row %d: %w", n+1, err)
		}
		brand, name, model := field(rec, srcBrand), field(rec, srcName), field(rec, srcModel)
		if brand == "" || name == "" || model == "" {
			continue
		}
		if err := w.Write([]string{brand, model, name}); err != nil {
			return n, err
		}
		n++
	}
	w.Flush()
	return n, w.Error()
}
