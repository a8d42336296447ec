package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// Client fetches raw activity rows from the inbox backend and drains them
// after a successful local merge.
type Client struct {
	http     *resty.Client
	pageSize int
	log      zerolog.Logger
}

// New constructs a Client for the given base URL. An empty apiKey leaves
// requests unauthenticated (dev backends).
func New(baseURL, apiKey string, pageSize int, timeout time.Duration, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Client{http: c, pageSize: pageSize, log: log}
}

// FetchPage returns one page of rows starting at offset. An out-of-range
// response (404 or 416 past the end of the inbox) reads as an empty page,
// which terminates pagination.
func (c *Client) FetchPage(ctx context.Context, offset int) ([]model.RawActivityRow, error) {
	var rows []model.RawActivityRow

	op := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetQueryParam("limit", strconv.Itoa(c.pageSize)).
			Get("/api/activity")
		if err != nil {
			return newNetworkError("fetch activity page", err)
		}

		switch resp.StatusCode() {
		case http.StatusOK:
		case http.StatusNotFound, http.StatusRequestedRangeNotSatisfiable:
			rows = nil
			return nil
		default:
			herr := newHTTPError(resp.StatusCode(), string(resp.Body()), "fetch activity page")
			if IsIrrecoverable(herr) {
				return backoff.Permanent(herr)
			}
			return herr
		}

		rows = rows[:0]
		if err := json.Unmarshal(resp.Body(), &rows); err != nil {
			// A malformed body will not improve on retry.
			return backoff.Permanent(&ClassifiedError{
				Category:   Irrecoverable,
				StatusCode: resp.StatusCode(),
				Body:       string(resp.Body()),
				Underlying: err,
			})
		}
		return nil
	}

	if err := backoff.Retry(op, c.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchAll walks the inbox page by page until a short page ends pagination.
func (c *Client) FetchAll(ctx context.Context) ([]model.RawActivityRow, error) {
	var all []model.RawActivityRow
	for offset := 0; ; offset += c.pageSize {
		page, err := c.FetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
	}
}

// deleteRequest is the bulk-drain payload.
type deleteRequest struct {
	BatchIDs []string `json:"batch_ids"`
}

// DeleteRows drains processed rows from the backend inbox. Called only
// after the merged state has been persisted locally.
func (c *Client) DeleteRows(ctx context.Context, batchIDs []string) error {
	if len(batchIDs) == 0 {
		return nil
	}

	op := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(deleteRequest{BatchIDs: batchIDs}).
			Delete("/api/activity")
		if err != nil {
			return newNetworkError("drain activity rows", err)
		}
		if resp.StatusCode() >= 300 {
			herr := newHTTPError(resp.StatusCode(), string(resp.Body()), "drain activity rows")
			if IsIrrecoverable(herr) {
				return backoff.Permanent(herr)
			}
			return herr
		}
		return nil
	}

	return backoff.Retry(op, c.retryPolicy(ctx))
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 20 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, 4), ctx)
}
