// Package adminhttp exposes a tiny read-only HTTP surface over the hub's
// live state, for operators and dashboards. It never mutates hub state;
// every handler just queries the reactor and marshals the snapshot.
package adminhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/arcadehub/gamehub/internal/hub"
)

// NewRouter builds the admin mux router against a live reactor.
func NewRouter(reactor *hub.Reactor) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, reactor.Query())
	}).Methods(http.MethodGet)

	r.HandleFunc("/rooms", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, reactor.Query().Rooms)
	}).Methods(http.MethodGet)

	r.HandleFunc("/games", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, reactor.Query().Games)
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding admin response", "error", err)
	}
}
