package model

import (
	"fmt"
	"hash/fnv"
	"time"
)

// DayFormat is the calendar-date layout batches are anchored to.
const DayFormat = "2006-01-02"

// SiteUsage is the per-website slice of a single batch interval.
type SiteUsage struct {
	UsageSeconds float64 `json:"usageSeconds"`
	DisplayTitle string  `json:"displayTitle,omitempty"`
}

// Batch is one atomic activity-tracking interval reported by a client agent.
// Once accepted by a merge a batch is immutable; all period-windowed views
// are recomputed from the batch ledger on demand.
type Batch struct {
	BatchID string `json:"batchId,omitempty"`

	// Date anchors the batch to the calendar day it started on.
	// EndDate is set only when SpansMidnight is true.
	Date    string `json:"date"`
	EndDate string `json:"endDate,omitempty"`

	SpansMidnight bool `json:"spansMidnight,omitempty"`

	ActiveSeconds   float64 `json:"activeSeconds"`
	InactiveSeconds float64 `json:"inactiveSeconds"`
	TotalSeconds    float64 `json:"totalSeconds"`

	// Meaningful only when SpansMidnight; expected (not enforced) to sum
	// to TotalSeconds.
	TimeBeforeMidnight float64 `json:"timeBeforeMidnight,omitempty"`
	TimeAfterMidnight  float64 `json:"timeAfterMidnight,omitempty"`

	// EndTime is the wall-clock end of the interval, used for lastActivity.
	EndTime *time.Time `json:"endTime,omitempty"`

	AppsSeconds     map[string]float64   `json:"appsSeconds,omitempty"`
	WebsitesSeconds map[string]SiteUsage `json:"websitesSeconds,omitempty"`
}

// Key returns the batch's dedup identity: BatchID when present, otherwise
// the date pair. The fallback can collide for distinct same-day batches
// that lack an id; callers that care log the collision.
func (b *Batch) Key() string {
	if b.BatchID != "" {
		return b.BatchID
	}
	return fmt.Sprintf("%s_%s", b.Date, b.EndDate)
}

// TimeParts is a display decomposition of a duration. Total (seconds) is
// authoritative; Hours/Minutes/Seconds are recomputed from it and never
// stored independently.
type TimeParts struct {
	Hours   int64   `json:"hours"`
	Minutes int64   `json:"minutes"`
	Seconds int64   `json:"seconds"`
	Total   float64 `json:"total"`
}

// TimePartsFromTotal rebuilds the display fields by floor-division.
func TimePartsFromTotal(total float64) TimeParts {
	if total < 0 {
		total = 0
	}
	whole := int64(total)
	return TimeParts{
		Hours:   whole / 3600,
		Minutes: (whole % 3600) / 60,
		Seconds: whole % 60,
		Total:   total,
	}
}

// AppUsage is a cumulative per-application total, in seconds.
type AppUsage struct {
	Name  string  `json:"name"`
	Usage float64 `json:"usage"`
}

// WebsiteUsage is a cumulative per-website total. Name and URL carry the
// cleaned site identity; Title keeps the last-seen page title for display.
type WebsiteUsage struct {
	Name  string  `json:"name"`
	Title string  `json:"title,omitempty"`
	Usage float64 `json:"usage"`
	URL   string  `json:"url,omitempty"`
}

// User is one tracked individual. Apps, Websites and the time totals are a
// denormalized cache maintained by the merger; Batches is the append-only
// ledger they can always be re-derived from.
type User struct {
	UserID string `json:"userId"`
	// ID is a locally-hashed numeric form of UserID, used only for UI
	// addressing.
	ID   uint32 `json:"id"`
	Name string `json:"name"`

	ActiveTime   TimeParts `json:"activeTime"`
	InactiveTime TimeParts `json:"inactiveTime"`

	Apps     []AppUsage     `json:"apps"`
	Websites []WebsiteUsage `json:"websites"`

	// LastActivity is the most recent end timestamp among merged batches
	// with at least one second of active time.
	LastActivity *time.Time `json:"lastActivity,omitempty"`

	// Batches keeps the original dashboard's field name on the wire so
	// previously persisted caches stay readable.
	Batches []Batch `json:"batchIds"`
}

// HashID derives the numeric UI id from a server-assigned user id.
func HashID(userID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return h.Sum32()
}

// Period is a named bucketing granularity for windowed aggregate queries.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAnnual  Period = "annual"
	PeriodCustom  Period = "custom"
)

// Valid reports whether p is a known period name.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAnnual, PeriodCustom:
		return true
	}
	return false
}

// DateRange is an inclusive day-granularity window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RawActivityRow is one row from the remote inbox backend, prior to
// normalization. Optional payload fields drift between agent versions
// (ap/apps, ur/urls), so the blob is kept raw here and coerced at the
// ingestion boundary.
type RawActivityRow struct {
	UserID              string  `json:"user_id"`
	BatchID             string  `json:"batch_id"`
	DateTracked         string  `json:"date_tracked"`
	BatchStartTime      string  `json:"batch_start_time"`
	BatchEndTime        string  `json:"batch_end_time"`
	ActiveTimeSeconds   float64 `json:"active_time_seconds"`
	InactiveTimeSeconds float64 `json:"inactive_time_seconds"`
	TotalTimeSeconds    float64 `json:"total_time_seconds"`
	ActivityData        string  `json:"activity_data,omitempty"`
}
