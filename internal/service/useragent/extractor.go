// Package useragent turns raw User-Agent strings into device signatures.
package useragent

import (
	"regexp"
	"strings"

	"DevSight/internal/domain/models"
	"DevSight/pkg/util"
)

const (
	tokenMac   = "MacBook/iMac"
	tokenLinux = "Linux Device"
	windowsPC  = "Windows PC"
)

// modelRule extracts a model token from an Android UA. Rules are tried in
// order and the first match wins.
type modelRule struct {
	name    string
	pattern *regexp.Regexp
}

var androidRules = []modelRule{
	{name: "build", pattern: regexp.MustCompile(`(?i)Android\s*[\d.]+;\s*([^)]+?)\s*Build/`)},
	{name: "paren", pattern: regexp.MustCompile(`(?i)Android\s*[\d.]+;\s*([A-Za-z0-9][A-Za-z0-9_\-\s]+?)(?:\s*\)|;)`)},
	{name: "skin", pattern: regexp.MustCompile(`(?i)Android\s*[\d.]+;\s*(?:wv;\s*)?([A-Za-z0-9][A-Za-z0-9_\-\s]+?)\s*MIUI`)},
}

// androidCleanup runs in order on a matched token.
var androidCleanup = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*Build$`),
	regexp.MustCompile(`(?i)\s*MIUI.*$`),
	regexp.MustCompile(`(?i)^wv;\s*`),
}

var (
	androidVersionRe = regexp.MustCompile(`(?i)Android\s*([\d.]+)`)
	iosDeviceRe      = regexp.MustCompile(`(?i)(iPhone|iPad|iPod)`)
	iosVersionRe     = regexp.MustCompile(`(?i)(?:iPhone|iPad|iPod).*?OS\s*([\d_]+)`)
	windowsVersionRe = regexp.MustCompile(`(?i)Windows\s*(?:NT)?\s*([\d.]+)`)
	macVersionRe     = regexp.MustCompile(`(?i)Macintosh.*Mac OS X\s*([\d_]+)`)
)

var windowsNames = map[string]string{
	"10.0": "Windows 10/11",
	"6.3":  "Windows 8.1",
	"6.2":  "Windows 8",
	"6.1":  "Windows 7",
	"6.0":  "Windows Vista",
	"5.1":  "Windows XP",
}

// Extract parses ua into a signature. It never fails: empty input yields the
// unknown platform and the "Unknown" token.
func Extract(ua string) models.DeviceSignature {
	sig := models.DeviceSignature{
		ModelToken: models.TokenUnknown,
		Platform:   models.PlatformUnknown,
		RawInput:   ua,
	}
	if strings.TrimSpace(ua) == "" {
		return sig
	}

	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "android"):
		sig.Platform = models.PlatformAndroid
		sig.ModelToken = androidModel(ua)
		sig.PlatformVersion = firstGroup(androidVersionRe, ua)
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		sig.Platform = models.PlatformIOS
		if m := iosDeviceRe.FindString(ua); m != "" {
			sig.ModelToken = m
		}
		sig.PlatformVersion = dotted(firstGroup(iosVersionRe, ua))
	case strings.Contains(lower, "windows"):
		sig.Platform = models.PlatformWindows
		sig.PlatformVersion = firstGroup(windowsVersionRe, ua)
		sig.ModelToken = windowsName(sig.PlatformVersion)
	case strings.Contains(lower, "macintosh"):
		sig.Platform = models.PlatformMacOS
		sig.ModelToken = tokenMac
		sig.PlatformVersion = dotted(firstGroup(macVersionRe, ua))
	case strings.Contains(lower, "linux"):
		sig.Platform = models.PlatformLinux
		sig.ModelToken = tokenLinux
	default:
		sig.Platform = models.PlatformOther
	}

	sig.ClientApplication = DetectBrowser(ua)
	return sig
}

func androidModel(ua string) string {
	token := ""
	for _, rule := range androidRules {
		if m := rule.pattern.FindStringSubmatch(ua); m != nil {
			token = strings.TrimSpace(m[1])
			break
		}
	}
	if token == "" {
		return models.TokenAndroidDevice
	}
	for _, re := range androidCleanup {
		token = re.ReplaceAllString(token, "")
	}
	token = strings.TrimSpace(token)
	if token == "" || token == models.TokenReducedUA {
		return models.TokenAndroidDevice
	}
	return token
}

func windowsName(version string) string {
	if version == "" {
		return windowsPC
	}
	if name, ok := windowsNames[version]; ok {
		return name
	}
	return "Windows " + version
}

// DetectBrowser scans ua for a client application name. The order matters:
// Chrome UAs also carry "Safari", Edge UAs carry both.
func DetectBrowser(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "miuibrowser"):
		return "MIUI Browser"
	case strings.Contains(lower, "edg/"):
		return "Edge"
	case strings.Contains(lower, "chrome") && strings.Contains(lower, "safari"):
		return "Chrome"
	case strings.Contains(lower, "firefox"):
		return "Firefox"
	case strings.Contains(lower, "safari") && !strings.Contains(lower, "chrome"):
		return "Safari"
	case strings.Contains(lower, "opera"), strings.Contains(lower, "opr/"):
		return "Opera"
	default:
		return "Unknown"
	}
}

// IsPlaceholder reports whether token is a sentinel that must never be used
// as a catalog key.
func IsPlaceholder(token string) bool {
	t := strings.TrimSpace(token)
	switch t {
	case "", models.TokenUnknown, models.TokenAndroidDevice, models.TokenReducedUA, "Device":
		return true
	}
	return strings.HasSuffix(t, " Device")
}

// CandidateTokens returns lookup keys for sig: the token, its despaced form,
// then upper and lower case variants, without repeats.
func CandidateTokens(sig models.DeviceSignature) []string {
	token := strings.TrimSpace(sig.ModelToken)
	if IsPlaceholder(token) {
		return nil
	}
	out := []string{token}
	if strings.Contains(token, " ") {
		out = append(out, strings.ReplaceAll(token, " ", ""))
	}
	out = append(out, strings.ToUpper(token), strings.ToLower(token))
	return util.Dedupe(out)
}

// ExtractModelCodes is CandidateTokens over a freshly parsed ua.
func ExtractModelCodes(ua string) []string {
	return CandidateTokens(Extract(ua))
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func dotted(v string) string {
	return strings.ReplaceAll(v, "_", ".")
}
