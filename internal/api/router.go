package api

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api/recovery"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// NewRouter wires all HTTP routes to their handlers.
func NewRouter(st store.Store, runner SyncRunner, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(log))

	users := NewUsersHandler(st, time.Now)
	root.HandleFunc("/api/users", users.ListUsers).Methods("GET")
	root.HandleFunc("/api/users", users.PurgeUsers).Methods("DELETE")
	root.HandleFunc("/api/users/{userId}", users.GetUser).Methods("GET")

	sync := NewSyncHandler(runner, log)
	root.HandleFunc("/api/sync", sync.TriggerSync).Methods("POST")

	exp := NewExportHandler(st, time.Now)
	root.HandleFunc("/api/export", exp.Export).Methods("GET")

	health := NewHealthHandler(st)
	root.HandleFunc("/api/health", health.Health).Methods("GET")

	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return root
}
