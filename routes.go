package main

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"

	"todo-manager/config"
	"todo-manager/handlers"
	"todo-manager/utilities"
)

// LoadRoutes wraps the task and tag router with CORS and panic recovery.
func LoadRoutes(h *handlers.Handlers, cfg config.ServerConfig) http.Handler {
	r := handlers.NewRouter(h)

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization", "X-Request-ID"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})
	origins := gorillahandlers.AllowedOrigins(cfg.AllowedOrigins)
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		utilities.LogInfo("CORS allows every origin ('*'); set CORS_ALLOWED_ORIGINS in production.")
	}
	utilities.LogInfo("Configuring CORS with allowed origins: %v", cfg.AllowedOrigins)

	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(utilities.Logger().StandardLog()),
		gorillahandlers.PrintRecoveryStack(true),
	)

	return recovery(gorillahandlers.CORS(headers, methods, origins)(r))
}
