package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"launchpad/adapter"
	"launchpad/history"
	"launchpad/launch"
	"launchpad/run"
)

// Options collects the collaborators behind the HTTP surface.
type Options struct {
	Presets  *launch.Manager
	Runs     *run.Manager
	Adapters *adapter.Registry
	History  history.Store
	Vars     launch.Vars
}

func RegisterRoutes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{
		presets:  opts.Presets,
		runs:     opts.Runs,
		adapters: opts.Adapters,
		store:    opts.History,
		vars:     opts.Vars,
	}

	// Launch file
	r.Get("/api/presets", h.getPresets)
	r.Put("/api/presets", h.putPresets)
	r.Post("/api/presets", h.addPreset)
	r.Post("/api/presets/validate", h.validatePresets)
	r.Get("/api/presets/recent", h.recentPresets)
	r.Get("/api/presets/{name}", h.getPreset)
	r.Delete("/api/presets/{name}", h.removePreset)

	// Debugger adapters
	r.Get("/api/adapters", h.listAdapters)

	// Runs
	r.Get("/api/runs", h.listRuns)
	r.Post("/api/runs", h.createRun)
	r.Get("/api/runs/{id}", h.getRun)
	r.Delete("/api/runs/{id}", h.killRun)

	// WebSocket
	r.Get("/api/runs/{id}/ws", h.handleWS)

	// Run history
	r.Get("/api/history", h.listHistory)
	r.Get("/api/history/{id}", h.getHistory)

	r.Get("/api/healthz", h.healthz)

	return r
}

type handler struct {
	presets  *launch.Manager
	runs     *run.Manager
	adapters *adapter.Registry
	store    history.Store
	vars     launch.Vars
}

func (h *handler) lintOptions() launch.LintOptions {
	return launch.LintOptions{KnownType: h.adapters.Known, Workspace: h.vars.Workspace}
}

func (h *handler) listAdapters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapters.AllInfo())
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
