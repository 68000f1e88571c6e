package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"todo-manager/database"
	"todo-manager/forms"
	"todo-manager/utilities"
)

const (
	taskListPath = "/"
	tagListPath  = "/tags/"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "Error encoding JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

// fail maps err to a response: missing rows become 404, everything else
// is logged and reported as a 500.
func fail(w http.ResponseWriter, err error, context string) {
	if errors.Is(err, database.ErrNotFound) {
		utilities.LogDebug("%s: %v", context, err)
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	utilities.LogError(err, context)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// validationErrors extracts per-field errors from err, if it carries any.
func validationErrors(err error) (forms.Errors, bool) {
	var ferrs forms.Errors
	if errors.As(err, &ferrs) {
		return ferrs, true
	}
	return nil, false
}

// pathID reads a numeric route variable. Route patterns only match digits,
// so a failure here means the value overflowed and is reported as missing.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, database.ErrNotFound
	}
	return id, nil
}
