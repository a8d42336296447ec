package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// browserSuffixes is the ordered list of window-title suffixes stripped by
// CleanName. Order matters: compound suffixes come before their short forms
// so "Foo - Google Chrome" is not left as "Foo - Google". Each pattern is
// matched case-insensitively, end-anchored, at most once.
var browserSuffixes = []string{
	" - Microsoft Edge",
	" - Google Chrome",
	" - Mozilla Firefox",
	" - Firefox",
	" - Safari",
	" - Chrome",
	" - Edge",
	" - Kişisel",
	" - Personal",
	" - Private",
	" - InPrivate",
}

// CleanName strips known browser and private-window suffixes from a raw
// window-title string to recover the canonical site name. Empty input is
// passed through unchanged. CleanName is idempotent.
func CleanName(raw string) string {
	if raw == "" {
		return raw
	}
	s := raw
	for _, suffix := range browserSuffixes {
		if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
			s = s[:len(s)-len(suffix)]
		}
	}
	return strings.TrimSpace(s)
}

// SplitTitle separates a raw browser window title into the site name and the
// trailing browser/application label. Only the rightmost " - " or " — "
// delimiter is honored, because site titles themselves legitimately contain
// dashes ("Breaking News - Top Story - Chrome" keeps its inner dash). When
// neither delimiter is present the whole string is the site name and the
// recorded title is retained as the browser label.
func SplitTitle(raw string) (siteName, browserName string) {
	hyphen := strings.LastIndex(raw, " - ")
	emDash := strings.LastIndex(raw, " — ")

	idx, delimLen := hyphen, len(" - ")
	if emDash > hyphen {
		idx, delimLen = emDash, len(" — ")
	}
	if idx < 0 {
		return strings.TrimSpace(raw), raw
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+delimLen:])
}

// NormalizeAppName canonicalizes application name casing: leading rune
// upper-cased, surrounding whitespace dropped. Agents report the same
// executable with inconsistent casing ("chrome", "Chrome").
func NormalizeAppName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
