package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"launchpad/history"
)

func (h *handler) listHistory(w http.ResponseWriter, r *http.Request) {
	opts := history.ListOptions{}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.Status = history.RunStatus(status)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	records, err := h.store.ListRecords(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, history.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, history.ErrAmbiguous):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
