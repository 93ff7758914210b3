package util

import "time"

const reportStampLayout = "20060102_150405"

// ReportStamp formats t for export file names, e.g. 20240131_235959.
func ReportStamp(t time.Time) string {
	return t.Format(reportStampLayout)
}
