package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"launchpad/history"
	"launchpad/launch"
	"launchpad/run"
)

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.runs.List())
}

type createRunRequest struct {
	Preset string `json:"preset"`
}

// createRun resolves a preset by name, expands its variables, builds
// the adapter command and spawns the process. The preset's console
// mode picks PTY versus pipe I/O.
func (h *handler) createRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := decodeJSON(r, &req); err != nil || req.Preset == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.presets.Find(req.Preset)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resolved, err := h.vars.ExpandPreset(p)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	argv, err := h.adapters.Command(resolved)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	dir := resolved.Cwd
	if dir == "" {
		dir = h.vars.Workspace
	}

	rn, err := h.runs.Create(run.Spec{
		Preset: p.Name,
		Argv:   argv,
		Dir:    dir,
		Env:    resolved.Env,
		UsePTY: resolved.EffectiveConsole() != launch.ConsoleInternal,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start run: "+err.Error())
		return
	}

	h.record(rn, p)
	writeJSON(w, http.StatusCreated, rn)
}

// record persists the launch and stamps the final status once the
// process ends. History failures never fail the run itself.
func (h *handler) record(rn *run.Run, p launch.Preset) {
	rec := &history.Record{
		ID:       rn.ID,
		Preset:   p.Name,
		Program:  p.Program,
		Args:     p.Args,
		Argv:     rn.Argv,
		ExitCode: -1,
	}
	if err := h.store.CreateRecord(context.Background(), rec); err != nil {
		log.Printf("history: recording run %s: %v", rn.ID, err)
		return
	}
	go func() {
		<-rn.Done()
		code, _ := rn.ExitCode()
		// run and history use the same status names.
		status := history.RunStatus(rn.Status())
		if err := h.store.FinishRecord(context.Background(), rn.ID, status, code); err != nil {
			log.Printf("history: finishing run %s: %v", rn.ID, err)
		}
	}()
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	rn, ok := h.runs.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, rn)
}

func (h *handler) killRun(w http.ResponseWriter, r *http.Request) {
	if err := h.runs.Kill(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, run.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to kill run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
