package ingest

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// rawPayload mirrors the JSON blob carried in each backend row. Agent
// versions disagree on field names (ap/apps, ur/urls), and numbers sometimes
// arrive as strings, so every value goes through tolerant coercion.
type rawPayload struct {
	Ap   map[string]any `json:"ap"`
	Apps map[string]any `json:"apps"`
	Ur   map[string]any `json:"ur"`
	Urls map[string]any `json:"urls"`
}

// NormalizeRow converts one raw backend row into a strict Batch. It never
// returns an error: missing numeric fields default to zero, malformed
// payload blobs yield empty usage maps, and negative durations are clamped.
// Format drift stops here; everything downstream sees only model.Batch.
func NormalizeRow(row model.RawActivityRow) model.Batch {
	b := model.Batch{
		BatchID:         row.BatchID,
		Date:            row.DateTracked,
		ActiveSeconds:   clampSeconds(row.ActiveTimeSeconds),
		InactiveSeconds: clampSeconds(row.InactiveTimeSeconds),
		TotalSeconds:    clampSeconds(row.TotalTimeSeconds),
	}

	start, startOK := parseTimestamp(row.BatchStartTime)
	end, endOK := parseTimestamp(row.BatchEndTime)
	if endOK {
		b.EndTime = &end
	}

	if b.Date == "" && startOK {
		b.Date = start.Format(model.DayFormat)
	}

	if startOK && endOK {
		startDay := start.Format(model.DayFormat)
		endDay := end.Format(model.DayFormat)
		if endDay != startDay && end.After(start) {
			b.SpansMidnight = true
			b.EndDate = endDay
			next := start.AddDate(0, 0, 1)
			midnight := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, start.Location())
			// Attribute total time by wall-clock share on each side of
			// midnight.
			span := end.Sub(start).Seconds()
			if span > 0 {
				before := midnight.Sub(start).Seconds() / span
				if before < 0 {
					before = 0
				}
				if before > 1 {
					before = 1
				}
				b.TimeBeforeMidnight = b.TotalSeconds * before
				b.TimeAfterMidnight = b.TotalSeconds - b.TimeBeforeMidnight
			}
		}
	}

	b.AppsSeconds, b.WebsitesSeconds = decodePayload(row.ActivityData)
	return b
}

// decodePayload extracts the per-app and per-website maps from the raw blob,
// cleaning site identities on the way in.
func decodePayload(blob string) (map[string]float64, map[string]model.SiteUsage) {
	apps := map[string]float64{}
	sites := map[string]model.SiteUsage{}
	if blob == "" {
		return apps, sites
	}

	var p rawPayload
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return apps, sites
	}

	appMap := p.Ap
	if len(appMap) == 0 {
		appMap = p.Apps
	}
	for name, v := range appMap {
		clean := NormalizeAppName(name)
		if clean == "" {
			continue
		}
		apps[clean] += clampSeconds(toFloat(v))
	}

	siteMap := p.Ur
	if len(siteMap) == 0 {
		siteMap = p.Urls
	}
	for rawName, v := range siteMap {
		site, _ := SplitTitle(CleanName(rawName))
		if site == "" {
			continue
		}
		seconds, title := siteFields(v)
		entry := sites[site]
		entry.UsageSeconds += clampSeconds(seconds)
		if title != "" {
			entry.DisplayTitle = title
		} else if entry.DisplayTitle == "" {
			entry.DisplayTitle = rawName
		}
		sites[site] = entry
	}

	return apps, sites
}

// siteFields pulls seconds and display title out of one ur/urls value,
// accepting both the compact {t, ti} and the verbose {seconds, title} shapes
// as well as a bare number.
func siteFields(v any) (float64, string) {
	switch t := v.(type) {
	case map[string]any:
		seconds := toFloat(firstPresent(t, "t", "seconds", "usageSeconds"))
		title, _ := firstPresent(t, "ti", "title", "displayTitle").(string)
		return seconds, title
	default:
		return toFloat(v), ""
	}
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// toFloat coerces JSON numbers, numeric strings, and nil into float64.
func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}

func clampSeconds(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// parseTimestamp accepts the timestamp formats agents have shipped over
// time: RFC3339 (with and without fractional seconds) and the legacy
// space-separated form.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
