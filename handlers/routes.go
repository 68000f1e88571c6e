package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every endpoint on a gorilla/mux router.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// --- Tasks ---
	r.HandleFunc("/", h.withCaller(h.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/task/create/", h.withCaller(h.CreateTaskHandler)).Methods("GET", "POST")
	r.HandleFunc("/task/{id:[0-9]+}/toggle_done/", h.withCaller(h.ToggleTaskDoneHandler)).Methods("GET")
	r.HandleFunc("/task/{id:[0-9]+}/add_tags/", h.withCaller(h.AddTagHandler)).Methods("GET", "POST")
	r.HandleFunc("/task/{id:[0-9]+}/remove_tags/", h.withCaller(h.RemoveTagHandler)).Methods("GET", "POST")
	r.HandleFunc("/task/{id:[0-9]+}/delete/", h.withCaller(h.DeleteTaskHandler)).Methods("POST")

	// --- Tags ---
	r.HandleFunc("/tags/", h.withCaller(h.ListTagsHandler)).Methods("GET")
	r.HandleFunc("/tags/create/", h.withCaller(h.CreateTagHandler)).Methods("GET", "POST")
	r.HandleFunc("/tags/{id:[0-9]+}/", h.withCaller(h.UpdateTagHandler)).Methods("GET", "POST")
	r.HandleFunc("/tags/{id:[0-9]+}/delete/", h.withCaller(h.DeleteTagHandler)).Methods("POST")

	// --- Status ---
	r.HandleFunc("/healthz", h.HealthHandler).Methods("GET")
	r.HandleFunc("/activity/", h.withCaller(h.ActivityHandler)).Methods("GET")

	return r
}
