// Package names resolves backend user identifiers to display names via an
// external webhook. Resolution is best-effort: any failure degrades to
// using the raw identifiers as display names.
package names

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Resolver calls the name-resolution webhook.
type Resolver struct {
	http *resty.Client
	url  string
	log  zerolog.Logger
}

// New constructs a Resolver. An empty webhookURL disables resolution
// entirely; Resolve then returns the identity mapping.
func New(webhookURL string, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		http: resty.New().SetHeader("Content-Type", "application/json").SetTimeout(timeout),
		url:  webhookURL,
		log:  log,
	}
}

type resolveRequest struct {
	UserIDs []string `json:"userIds"`
}

// employeeRecord is the verbose webhook response element shape.
type employeeRecord struct {
	Number string `json:"Employee Number"`
	Name   string `json:"Employee Name"`
}

// Resolve maps each id to a display name. The result always contains every
// requested id; ids the webhook does not know (or cannot be reached for)
// map to themselves.
func (r *Resolver) Resolve(ctx context.Context, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = id
	}
	if r.url == "" || len(ids) == 0 {
		return out
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(resolveRequest{UserIDs: ids}).
		Post(r.url)
	if err != nil {
		r.log.Warn().Err(err).Msg("name webhook unreachable, using raw ids")
		return out
	}
	if resp.StatusCode() != http.StatusOK {
		r.log.Warn().Int("status", resp.StatusCode()).Msg("name webhook error, using raw ids")
		return out
	}

	applyPayload(resp.Body(), out)
	return out
}

// applyPayload accepts both webhook response shapes: an array of
// {Employee Number, Employee Name} records, or a direct id→name object.
func applyPayload(body []byte, out map[string]string) {
	var records []employeeRecord
	if err := json.Unmarshal(body, &records); err == nil {
		for _, rec := range records {
			if rec.Number != "" && rec.Name != "" {
				if _, ok := out[rec.Number]; ok {
					out[rec.Number] = rec.Name
				}
			}
		}
		return
	}

	var direct map[string]string
	if err := json.Unmarshal(body, &direct); err == nil {
		for id, name := range direct {
			if name == "" {
				continue
			}
			if _, ok := out[id]; ok {
				out[id] = name
			}
		}
	}
}
