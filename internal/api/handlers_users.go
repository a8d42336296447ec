package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api/respond"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/period"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// UsersHandler serves the dashboard's per-user views, windowed by period
// and always re-derived from the batch ledger.
type UsersHandler struct {
	store store.Store
	now   func() time.Time
}

// NewUsersHandler constructs a UsersHandler. now is injectable for tests.
func NewUsersHandler(st store.Store, now func() time.Time) *UsersHandler {
	if now == nil {
		now = time.Now
	}
	return &UsersHandler{store: st, now: now}
}

// userSummary is the list-view row for one user.
type userSummary struct {
	UserID          string          `json:"userId"`
	ID              uint32          `json:"id"`
	Name            string          `json:"name"`
	ActiveSeconds   float64         `json:"activeSeconds"`
	InactiveSeconds float64         `json:"inactiveSeconds"`
	TotalSeconds    float64         `json:"totalSeconds"`
	ActiveTime      model.TimeParts `json:"activeTime"`
	LastActivity    *time.Time      `json:"lastActivity,omitempty"`
	BatchCount      int             `json:"batchCount"`
}

// ListUsers GET /api/users?period=weekly[&from=..&to=..]
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rng, p, err := rangeFromQuery(r, h.now())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	users := h.store.Load(r.Context())
	summaries := make([]userSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i], rng))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ActiveSeconds > summaries[j].ActiveSeconds
	})

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"period": p,
		"range":  rng,
		"users":  summaries,
		"count":  len(summaries),
	})
}

// userDetail adds the full denormalized aggregates to the summary.
type userDetail struct {
	userSummary
	Apps     []model.AppUsage     `json:"apps"`
	Websites []model.WebsiteUsage `json:"websites"`
}

// GetUser GET /api/users/{userId}
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	rng, _, err := rangeFromQuery(r, h.now())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	u, ok := findUser(h.store.Load(r.Context()), userID)
	if !ok {
		respond.WriteNotFound(w, model.NewNotFoundError("userId", userID).Error())
		return
	}

	respond.WriteJSON(w, http.StatusOK, userDetail{
		userSummary: summarize(u, rng),
		Apps:        u.Apps,
		Websites:    u.Websites,
	})
}

// PurgeUsers DELETE /api/users — the "clear all local data" action.
func (h *UsersHandler) PurgeUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Wipe(r.Context()); err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"purged": true})
}

func summarize(u *model.User, rng model.DateRange) userSummary {
	active := period.SecondsForPeriod(u, rng, period.KindActive)
	return userSummary{
		UserID:          u.UserID,
		ID:              u.ID,
		Name:            u.Name,
		ActiveSeconds:   active,
		InactiveSeconds: period.SecondsForPeriod(u, rng, period.KindInactive),
		TotalSeconds:    period.SecondsForPeriod(u, rng, period.KindTotal),
		ActiveTime:      model.TimePartsFromTotal(active),
		LastActivity:    u.LastActivity,
		BatchCount:      len(u.Batches),
	}
}

func findUser(users []model.User, userID string) (*model.User, bool) {
	for i := range users {
		if users[i].UserID == userID {
			return &users[i], true
		}
	}
	return nil, false
}

// rangeFromQuery resolves the period/from/to query parameters to a date
// range. Missing period defaults to daily; custom requires both bounds.
func rangeFromQuery(r *http.Request, now time.Time) (model.DateRange, model.Period, error) {
	q := r.URL.Query()

	p := model.Period(q.Get("period"))
	if p == "" {
		p = model.PeriodDaily
	}
	if !p.Valid() {
		return model.DateRange{}, p, model.NewValidationError("period", "unknown period "+string(p))
	}

	var custom *model.DateRange
	if p == model.PeriodCustom {
		from, errF := time.Parse(model.DayFormat, q.Get("from"))
		to, errT := time.Parse(model.DayFormat, q.Get("to"))
		if errF != nil || errT != nil {
			return model.DateRange{}, p, model.NewValidationError("period", "custom period requires from and to (YYYY-MM-DD)")
		}
		custom = &model.DateRange{Start: from, End: to}
	}

	rng, err := period.RangeFor(p, now, custom)
	return rng, p, err
}
