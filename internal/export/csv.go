// Package export renders period-windowed activity reports as CSV. Values
// are re-derived from each user's batch ledger, never read from the
// denormalized caches, so an export always agrees with the dashboard's
// windowed views.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/period"
)

var header = []string{
	"user_id",
	"name",
	"active_time",
	"active_seconds",
	"inactive_seconds",
	"total_seconds",
	"top_app",
	"top_website",
	"last_activity",
	"batches",
}

// WriteCSV writes one row per user for the given window, sorted by windowed
// active seconds descending.
func WriteCSV(w io.Writer, users []model.User, r model.DateRange) error {
	type line struct {
		user     *model.User
		active   float64
		inactive float64
		total    float64
	}

	lines := make([]line, 0, len(users))
	for i := range users {
		u := &users[i]
		lines = append(lines, line{
			user:     u,
			active:   period.SecondsForPeriod(u, r, period.KindActive),
			inactive: period.SecondsForPeriod(u, r, period.KindInactive),
			total:    period.SecondsForPeriod(u, r, period.KindTotal),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].active > lines[j].active })

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return pkgerrors.Wrap(err, "write csv header")
	}

	for _, l := range lines {
		u := l.user
		record := []string{
			u.UserID,
			u.Name,
			formatHMS(l.active),
			formatSeconds(l.active),
			formatSeconds(l.inactive),
			formatSeconds(l.total),
			topApp(u),
			topWebsite(u),
			formatLastActivity(u.LastActivity),
			strconv.Itoa(len(u.Batches)),
		}
		if err := cw.Write(record); err != nil {
			return pkgerrors.Wrapf(err, "write csv row for %s", u.UserID)
		}
	}

	cw.Flush()
	return pkgerrors.Wrap(cw.Error(), "flush csv")
}

// Filename names the attachment after the period and its start day.
func Filename(p model.Period, r model.DateRange) string {
	return fmt.Sprintf("activity_%s_%s.csv", p, r.Start.Format(model.DayFormat))
}

func formatHMS(seconds float64) string {
	parts := model.TimePartsFromTotal(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", parts.Hours, parts.Minutes, parts.Seconds)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func topApp(u *model.User) string {
	if len(u.Apps) == 0 {
		return ""
	}
	return u.Apps[0].Name
}

func topWebsite(u *model.User) string {
	if len(u.Websites) == 0 {
		return ""
	}
	return u.Websites[0].Name
}

func formatLastActivity(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
