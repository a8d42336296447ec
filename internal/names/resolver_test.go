package names

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestResolve_ArrayOfEmployeeRecords(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`[
			{"Employee Number":"1001","Employee Name":"Ada Lovelace"},
			{"Employee Number":"1002","Employee Name":"Grace Hopper"}
		]`))
	})

	got := r.Resolve(context.Background(), []string{"1001", "1002", "1003"})
	assert.Equal(t, "Ada Lovelace", got["1001"])
	assert.Equal(t, "Grace Hopper", got["1002"])
	assert.Equal(t, "1003", got["1003"]) // unknown id falls back to itself
}

func TestResolve_DirectMappingObject(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"1001":"Ada Lovelace"}`))
	})

	got := r.Resolve(context.Background(), []string{"1001"})
	assert.Equal(t, "Ada Lovelace", got["1001"])
}

func TestResolve_WebhookFailureDegradesToRawIDs(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	got := r.Resolve(context.Background(), []string{"1001"})
	assert.Equal(t, map[string]string{"1001": "1001"}, got)
}

func TestResolve_MalformedBodyDegradesToRawIDs(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	})

	got := r.Resolve(context.Background(), []string{"1001"})
	assert.Equal(t, "1001", got["1001"])
}

func TestResolve_DisabledWebhookReturnsIdentity(t *testing.T) {
	r := New("", time.Second, zerolog.Nop())
	got := r.Resolve(context.Background(), []string{"1001"})
	require.Equal(t, map[string]string{"1001": "1001"}, got)
}

func TestResolve_EmptyIDList(t *testing.T) {
	r := New("", time.Second, zerolog.Nop())
	assert.Empty(t, r.Resolve(context.Background(), nil))
}
