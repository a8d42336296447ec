// Package merge implements the cumulative combination of freshly fetched
// per-user activity into previously persisted state. Merging is idempotent:
// batch-level dedup guarantees that replaying a fetch result is a no-op.
package merge

import (
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/ingest"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// Users merges incoming users into existing ones, keyed by UserID with the
// hashed local id as fallback. The returned slice is freshly allocated;
// neither input is mutated. Malformed incoming records never abort the
// merge: missing numerics default to zero and missing collections to empty.
func Users(existing, incoming []model.User, log zerolog.Logger) []model.User {
	out := make([]model.User, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing))

	for _, u := range existing {
		out = append(out, copyUser(u))
		index[userKey(&u)] = len(out) - 1
	}

	for _, inc := range incoming {
		key := userKey(&inc)
		i, ok := index[key]
		if !ok {
			out = append(out, copyUser(inc))
			index[key] = len(out) - 1
			continue
		}
		mergeInto(&out[i], &inc, log)
	}

	return out
}

func userKey(u *model.User) string {
	if u.UserID != "" {
		return u.UserID
	}
	return "id:" + strconv.FormatUint(uint64(u.ID), 10) // fallback for id-only records
}

// mergeInto folds one incoming user into the accumulated record. The
// aggregate delta is derived only from batches that survive dedup, so
// replaying the same fetch result is a strict no-op. Incoming records that
// carry no batch ledger (older persisted shapes) fall back to their
// denormalized fields as the delta.
func mergeInto(dst *model.User, inc *model.User, log zerolog.Logger) {
	if inc.Name != "" {
		dst.Name = inc.Name
	}

	seen := make(map[string]bool, len(dst.Batches))
	for i := range dst.Batches {
		seen[dst.Batches[i].Key()] = true
	}
	accepted := make([]model.Batch, 0, len(inc.Batches))
	for _, b := range inc.Batches {
		key := b.Key()
		if seen[key] {
			// Ties keep the existing entry. An id-less duplicate may also
			// be a distinct same-day batch colliding on the fallback key,
			// so make it visible.
			if b.BatchID == "" {
				log.Warn().
					Str("user_id", dst.UserID).
					Str("batch_key", key).
					Msg("discarding batch with duplicate fallback key")
			}
			continue
		}
		seen[key] = true
		accepted = append(accepted, b)
		dst.Batches = append(dst.Batches, copyBatch(b))
	}

	delta := *inc
	if len(inc.Batches) > 0 {
		delta = BuildUser(inc.UserID, accepted)
	}

	dst.ActiveTime = model.TimePartsFromTotal(dst.ActiveTime.Total + delta.ActiveTime.Total)
	dst.InactiveTime = model.TimePartsFromTotal(dst.InactiveTime.Total + delta.InactiveTime.Total)

	dst.Apps = mergeApps(dst.Apps, delta.Apps)
	dst.Websites = mergeWebsites(dst.Websites, delta.Websites)

	// Never regress lastActivity: a missing or stale incoming timestamp
	// leaves the existing one untouched.
	if delta.LastActivity != nil && (dst.LastActivity == nil || delta.LastActivity.After(*dst.LastActivity)) {
		ts := *delta.LastActivity
		dst.LastActivity = &ts
	}
}

// mergeApps sums usage keyed by app name, clamps negatives, floors, and
// re-sorts descending.
func mergeApps(existing, incoming []model.AppUsage) []model.AppUsage {
	totals := make(map[string]float64, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	accumulate := func(list []model.AppUsage) {
		for _, a := range list {
			if a.Name == "" {
				continue
			}
			if _, ok := totals[a.Name]; !ok {
				order = append(order, a.Name)
			}
			totals[a.Name] += a.Usage
		}
	}
	accumulate(existing)
	accumulate(incoming)

	out := make([]model.AppUsage, 0, len(order))
	for _, name := range order {
		out = append(out, model.AppUsage{Name: name, Usage: flooredUsage(totals[name])})
	}
	sortAppsDesc(out)
	return out
}

// mergeWebsites sums usage keyed by the cleaned site identity. Cleaning is
// applied to both sides so previously persisted uncleaned entries self-heal
// on the next merge. Title, name and url fall back incoming → existing → key.
func mergeWebsites(existing, incoming []model.WebsiteUsage) []model.WebsiteUsage {
	type acc struct {
		usage float64
		site  model.WebsiteUsage
	}
	totals := make(map[string]*acc, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	accumulate := func(list []model.WebsiteUsage, overwrite bool) {
		for _, w := range list {
			key := siteKey(w)
			if key == "" {
				continue
			}
			a, ok := totals[key]
			if !ok {
				a = &acc{site: model.WebsiteUsage{Name: key, URL: key}}
				totals[key] = a
				order = append(order, key)
			}
			a.usage += w.Usage
			if w.Title != "" && (overwrite || a.site.Title == "") {
				a.site.Title = w.Title
			}
		}
	}
	accumulate(existing, false)
	accumulate(incoming, true)

	out := make([]model.WebsiteUsage, 0, len(order))
	for _, key := range order {
		a := totals[key]
		a.site.Usage = flooredUsage(a.usage)
		out = append(out, a.site)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Usage > out[j].Usage })
	return out
}

// siteKey derives the merge key for a website entry: cleaned name, falling
// back to cleaned url.
func siteKey(w model.WebsiteUsage) string {
	if s := ingest.CleanName(w.Name); s != "" {
		return s
	}
	return ingest.CleanName(w.URL)
}

func flooredUsage(f float64) float64 {
	if f < 0 {
		return 0
	}
	return math.Floor(f)
}

func sortAppsDesc(apps []model.AppUsage) {
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].Usage > apps[j].Usage })
}

func copyUser(u model.User) model.User {
	c := u
	c.Apps = append([]model.AppUsage(nil), u.Apps...)
	c.Websites = append([]model.WebsiteUsage(nil), u.Websites...)
	c.Batches = make([]model.Batch, 0, len(u.Batches))
	for _, b := range u.Batches {
		c.Batches = append(c.Batches, copyBatch(b))
	}
	if u.LastActivity != nil {
		ts := *u.LastActivity
		c.LastActivity = &ts
	}
	return c
}

func copyBatch(b model.Batch) model.Batch {
	c := b
	if b.EndTime != nil {
		ts := *b.EndTime
		c.EndTime = &ts
	}
	if b.AppsSeconds != nil {
		c.AppsSeconds = make(map[string]float64, len(b.AppsSeconds))
		for k, v := range b.AppsSeconds {
			c.AppsSeconds[k] = v
		}
	}
	if b.WebsitesSeconds != nil {
		c.WebsitesSeconds = make(map[string]model.SiteUsage, len(b.WebsitesSeconds))
		for k, v := range b.WebsitesSeconds {
			c.WebsitesSeconds[k] = v
		}
	}
	return c
}

// noiseThreshold is the minimum active time for a batch to move
// lastActivity. Sub-second batches still count toward usage totals.
const noiseThreshold = 1.0

// BuildUser shapes a set of freshly normalized batches into an incoming user
// record ready for merging.
func BuildUser(userID string, batches []model.Batch) model.User {
	u := model.User{
		UserID:  userID,
		ID:      model.HashID(userID),
		Name:    userID,
		Batches: make([]model.Batch, 0, len(batches)),
	}

	var active, inactive float64
	appTotals := map[string]float64{}
	siteTotals := map[string]*model.WebsiteUsage{}

	for _, b := range batches {
		u.Batches = append(u.Batches, copyBatch(b))
		active += b.ActiveSeconds
		inactive += b.InactiveSeconds

		for name, secs := range b.AppsSeconds {
			appTotals[name] += secs
		}
		for site, usage := range b.WebsitesSeconds {
			w, ok := siteTotals[site]
			if !ok {
				w = &model.WebsiteUsage{Name: site, URL: site}
				siteTotals[site] = w
			}
			w.Usage += usage.UsageSeconds
			if usage.DisplayTitle != "" {
				w.Title = usage.DisplayTitle
			}
		}

		if b.ActiveSeconds >= noiseThreshold && b.EndTime != nil {
			if u.LastActivity == nil || b.EndTime.After(*u.LastActivity) {
				ts := *b.EndTime
				u.LastActivity = &ts
			}
		}
	}

	u.ActiveTime = model.TimePartsFromTotal(active)
	u.InactiveTime = model.TimePartsFromTotal(inactive)

	u.Apps = make([]model.AppUsage, 0, len(appTotals))
	for name, secs := range appTotals {
		u.Apps = append(u.Apps, model.AppUsage{Name: name, Usage: flooredUsage(secs)})
	}
	sortAppsDesc(u.Apps)

	u.Websites = make([]model.WebsiteUsage, 0, len(siteTotals))
	for _, w := range siteTotals {
		w.Usage = flooredUsage(w.Usage)
		u.Websites = append(u.Websites, *w)
	}
	sort.SliceStable(u.Websites, func(i, j int) bool { return u.Websites[i].Usage > u.Websites[j].Usage })

	return u
}
