package handlers

import (
	"net/http"
	"strconv"

	"todo-manager/utilities"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// HealthHandler reports whether the store answers.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		utilities.LogError(err, "HealthHandler: store unavailable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ActivityHandler returns the most recent mutations, newest first.
// The optional limit query parameter is capped at maxActivityLimit.
func (h *Handlers) ActivityHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	utilities.LogDebug("Listing %d activity entries for %s", limit, caller.UID)
	entries, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		fail(w, err, "ActivityHandler: error reading activity")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}
