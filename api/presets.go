package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"launchpad/launch"
)

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.presets.Get())
}

// putPresets replaces the whole document. The new document must lint
// clean; warnings are allowed, errors are not.
func (h *handler) putPresets(w http.ResponseWriter, r *http.Request) {
	var f launch.File
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report := launch.ValidateFile(f, h.lintOptions())
	if !report.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	if err := h.presets.Save(f); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save launch file")
		return
	}
	writeJSON(w, http.StatusOK, h.presets.Get())
}

func (h *handler) addPreset(w http.ResponseWriter, r *http.Request) {
	var p launch.Preset
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report := launch.ValidateFile(launch.File{
		Version:        launch.DefaultVersion,
		Configurations: []launch.Preset{p},
	}, h.lintOptions())
	if !report.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	}

	if err := h.presets.Add(p); err != nil {
		if errors.Is(err, launch.ErrNameTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save launch file")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) getPreset(w http.ResponseWriter, r *http.Request) {
	p, err := h.presets.Find(urlName(r))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) removePreset(w http.ResponseWriter, r *http.Request) {
	if err := h.presets.Remove(urlName(r)); err != nil {
		if errors.Is(err, launch.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save launch file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validatePresets lints a posted document without saving it. The body
// may use the editor dialect (comments, trailing commas); a syntax
// error comes back as a report error with its line and column.
func (h *handler) validatePresets(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	f, err := launch.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusOK, launch.Report{Errors: []string{err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, launch.ValidateFile(f, h.lintOptions()))
}

func (h *handler) recentPresets(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.RecentPresets(r.Context(), 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recentlyUsed": names})
}

// urlName extracts the preset name parameter. Names routinely contain
// spaces ("train dit"), which arrive percent-encoded.
func urlName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
