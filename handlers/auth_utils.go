package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"todo-manager/utilities"
)

// Caller identifies who issued a request. It is resolved once per request
// and handed to the handler as an argument.
type Caller struct {
	UID string
}

// Anonymous is the caller of requests that carry no verified token.
var Anonymous = Caller{UID: "anonymous"}

type callerHandlerFunc func(w http.ResponseWriter, r *http.Request, caller Caller)

// withCaller resolves the caller and passes it to next.
func (h *Handlers) withCaller(next callerHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := h.callerFromRequest(r)
		if err != nil {
			utilities.LogError(err, "Authentication failed")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, caller)
	}
}

func (h *Handlers) callerFromRequest(r *http.Request) (Caller, error) {
	if h.identity == nil {
		return Anonymous, nil
	}

	token := bearerToken(r)
	if token == "" {
		if h.authRequired {
			return Caller{}, fmt.Errorf("authorization header missing")
		}
		return Anonymous, nil
	}

	uid, err := h.identity.VerifyUserToken(r.Context(), token)
	if err != nil {
		if h.authRequired {
			return Caller{}, err
		}
		utilities.LogDebug("Ignoring invalid token on optional auth: %v", err)
		return Anonymous, nil
	}

	utilities.LogDebug("Token verified for UID: %s", uid)
	return Caller{UID: uid}, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
