package merge

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

var noLog = zerolog.Nop()

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestUsers_InsertsNewUserAsDeepCopy(t *testing.T) {
	inc := []model.User{{
		UserID:  "emp-1001",
		Name:    "emp-1001",
		Apps:    []model.AppUsage{{Name: "Chrome", Usage: 60}},
		Batches: []model.Batch{{BatchID: "b-1", Date: "2026-03-04", ActiveSeconds: 60, TotalSeconds: 60}},
	}}

	out := Users(nil, inc, noLog)
	require.Len(t, out, 1)

	// Mutating the result must not leak into the input.
	out[0].Apps[0].Usage = 999
	out[0].Batches[0].ActiveSeconds = 999
	assert.Equal(t, 60.0, inc[0].Apps[0].Usage)
	assert.Equal(t, 60.0, inc[0].Batches[0].ActiveSeconds)
}

func TestUsers_SpecExampleMerge(t *testing.T) {
	existing := []model.User{{
		UserID:     "emp-1001",
		ActiveTime: model.TimePartsFromTotal(100),
		Apps:       []model.AppUsage{{Name: "Chrome", Usage: 60}},
	}}
	incoming := []model.User{{
		UserID:     "emp-1001",
		ActiveTime: model.TimePartsFromTotal(50),
		Apps: []model.AppUsage{
			{Name: "Chrome", Usage: 20},
			{Name: "Slack", Usage: 10},
		},
	}}

	out := Users(existing, incoming, noLog)
	require.Len(t, out, 1)

	assert.Equal(t, 150.0, out[0].ActiveTime.Total)
	require.Len(t, out[0].Apps, 2)
	assert.Equal(t, model.AppUsage{Name: "Chrome", Usage: 80}, out[0].Apps[0])
	assert.Equal(t, model.AppUsage{Name: "Slack", Usage: 10}, out[0].Apps[1])
}

func TestUsers_TimePartsRecomputedFromTotal(t *testing.T) {
	existing := []model.User{{UserID: "u", ActiveTime: model.TimePartsFromTotal(3500)}}
	incoming := []model.User{{UserID: "u", ActiveTime: model.TimePartsFromTotal(200)}}

	out := Users(existing, incoming, noLog)
	got := out[0].ActiveTime
	assert.Equal(t, int64(1), got.Hours)
	assert.Equal(t, int64(1), got.Minutes)
	assert.Equal(t, int64(40), got.Seconds)
	assert.Equal(t, 3700.0, got.Total)
}

func TestUsers_IdempotentOnRepeatedMerge(t *testing.T) {
	incoming := []model.User{BuildUser("emp-1001", []model.Batch{
		{BatchID: "b-1", Date: "2026-03-04", ActiveSeconds: 100, TotalSeconds: 120,
			AppsSeconds: map[string]float64{"Chrome": 100}},
		{BatchID: "b-2", Date: "2026-03-04", ActiveSeconds: 50, TotalSeconds: 60,
			AppsSeconds: map[string]float64{"Slack": 50}},
	})}

	once := Users(nil, incoming, noLog)
	once = Users(once, incoming, noLog)
	twice := Users(once, incoming, noLog)

	require.Len(t, twice, 1)
	assert.Len(t, twice[0].Batches, 2)
	// Batch dedup keeps the ledger stable, and the aggregate delta is
	// derived only from accepted batches, so the whole record is stable.
	assert.Equal(t, once[0].Batches, twice[0].Batches)
	assert.Equal(t, once[0].ActiveTime, twice[0].ActiveTime)
	assert.Equal(t, once[0].Apps, twice[0].Apps)
	assert.Equal(t, once[0].Websites, twice[0].Websites)
}

func TestUsers_ArrivalOrderIrrelevantForDisjointSets(t *testing.T) {
	x := []model.User{BuildUser("emp-1001", []model.Batch{
		{BatchID: "b-1", Date: "2026-03-04", ActiveSeconds: 100, TotalSeconds: 120,
			AppsSeconds: map[string]float64{"Chrome": 100}},
	})}
	y := []model.User{BuildUser("emp-1001", []model.Batch{
		{BatchID: "b-2", Date: "2026-03-04", ActiveSeconds: 40, TotalSeconds: 60,
			AppsSeconds: map[string]float64{"Chrome": 20, "Slack": 20}},
	})}

	xy := Users(Users(nil, x, noLog), y, noLog)
	yx := Users(Users(nil, y, noLog), x, noLog)

	require.Len(t, xy, 1)
	require.Len(t, yx, 1)
	assert.Equal(t, xy[0].ActiveTime.Total, yx[0].ActiveTime.Total)
	assert.Equal(t, xy[0].Apps, yx[0].Apps)
	assert.Len(t, xy[0].Batches, 2)
	assert.Len(t, yx[0].Batches, 2)
}

func TestUsers_WebsiteKeysSelfHealOnMerge(t *testing.T) {
	// Persisted state predates cleaning; the key still carries a browser
	// suffix. Merging must fold it together with the cleaned incoming row.
	existing := []model.User{{
		UserID:   "u",
		Websites: []model.WebsiteUsage{{Name: "GitHub - Google Chrome", Usage: 100, Title: "old"}},
	}}
	incoming := []model.User{{
		UserID:   "u",
		Websites: []model.WebsiteUsage{{Name: "GitHub", URL: "GitHub", Usage: 50, Title: "GitHub - Home"}},
	}}

	out := Users(existing, incoming, noLog)
	require.Len(t, out[0].Websites, 1)
	w := out[0].Websites[0]
	assert.Equal(t, "GitHub", w.Name)
	assert.Equal(t, "GitHub", w.URL)
	assert.Equal(t, 150.0, w.Usage)
	assert.Equal(t, "GitHub - Home", w.Title) // incoming title wins
}

func TestUsers_UsageClampedAndFloored(t *testing.T) {
	existing := []model.User{{
		UserID: "u",
		Apps:   []model.AppUsage{{Name: "Chrome", Usage: 10.9}},
	}}
	incoming := []model.User{{
		UserID: "u",
		Apps: []model.AppUsage{
			{Name: "Chrome", Usage: 2.4},
			{Name: "Broken", Usage: -50},
		},
	}}

	out := Users(existing, incoming, noLog)
	require.Len(t, out[0].Apps, 2)
	assert.Equal(t, 13.0, out[0].Apps[0].Usage) // floor(13.3)
	assert.Equal(t, 0.0, out[0].Apps[1].Usage)  // clamped
}

func TestUsers_LastActivityNeverRegresses(t *testing.T) {
	newer := ts("2026-03-04T18:00:00Z")
	older := ts("2026-03-01T09:00:00Z")

	existing := []model.User{{UserID: "u", LastActivity: newer}}

	out := Users(existing, []model.User{{UserID: "u", LastActivity: older}}, noLog)
	assert.Equal(t, *newer, *out[0].LastActivity)

	out = Users(existing, []model.User{{UserID: "u"}}, noLog) // missing timestamp
	assert.Equal(t, *newer, *out[0].LastActivity)

	later := ts("2026-03-05T08:00:00Z")
	out = Users(existing, []model.User{{UserID: "u", LastActivity: later}}, noLog)
	assert.Equal(t, *later, *out[0].LastActivity)
}

func TestUsers_NameReplacedOnlyWhenPresent(t *testing.T) {
	existing := []model.User{{UserID: "u", Name: "Ada Lovelace"}}

	out := Users(existing, []model.User{{UserID: "u"}}, noLog)
	assert.Equal(t, "Ada Lovelace", out[0].Name)

	out = Users(existing, []model.User{{UserID: "u", Name: "Ada L."}}, noLog)
	assert.Equal(t, "Ada L.", out[0].Name)
}

func TestUsers_MalformedIncomingDoesNotAbortMerge(t *testing.T) {
	existing := []model.User{{UserID: "u", ActiveTime: model.TimePartsFromTotal(100)}}
	incoming := []model.User{
		{UserID: "u"}, // no collections, no numerics
		{UserID: "v"},
	}

	out := Users(existing, incoming, noLog)
	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out[0].ActiveTime.Total)
}

func TestUsers_FallbackKeyTiesKeepExisting(t *testing.T) {
	existing := []model.User{{
		UserID: "u",
		Batches: []model.Batch{
			{Date: "2026-03-04", ActiveSeconds: 100, TotalSeconds: 100},
		},
	}}
	incoming := []model.User{{
		UserID: "u",
		Batches: []model.Batch{
			// Distinct same-day batch without an id collides on the
			// date_endDate fallback key and is discarded.
			{Date: "2026-03-04", ActiveSeconds: 55, TotalSeconds: 55},
		},
	}}

	out := Users(existing, incoming, noLog)
	require.Len(t, out[0].Batches, 1)
	assert.Equal(t, 100.0, out[0].Batches[0].ActiveSeconds)
}

func TestBuildUser_AggregatesAndNoiseFilter(t *testing.T) {
	end1 := ts("2026-03-04T10:00:00Z")
	end2 := ts("2026-03-04T18:00:00Z")

	u := BuildUser("emp-1001", []model.Batch{
		{BatchID: "b-1", Date: "2026-03-04", ActiveSeconds: 100, InactiveSeconds: 20,
			TotalSeconds: 120, EndTime: end1,
			AppsSeconds:     map[string]float64{"Chrome": 100},
			WebsitesSeconds: map[string]model.SiteUsage{"GitHub": {UsageSeconds: 90, DisplayTitle: "GitHub"}}},
		// Sub-second active time: counts toward totals, never lastActivity.
		{BatchID: "b-2", Date: "2026-03-04", ActiveSeconds: 0.5, TotalSeconds: 0.5, EndTime: end2,
			AppsSeconds: map[string]float64{"Chrome": 0.5}},
	})

	assert.Equal(t, model.HashID("emp-1001"), u.ID)
	assert.Equal(t, "emp-1001", u.Name)
	assert.InDelta(t, 100.5, u.ActiveTime.Total, 1e-9)
	require.Len(t, u.Apps, 1)
	assert.Equal(t, 100.0, u.Apps[0].Usage) // floor(100.5)
	require.NotNil(t, u.LastActivity)
	assert.Equal(t, *end1, *u.LastActivity, "sub-second batch must not move lastActivity")
	require.Len(t, u.Websites, 1)
	assert.Equal(t, "GitHub", u.Websites[0].Name)
}
