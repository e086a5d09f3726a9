package httphandler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// AllowOrigins answers CORS for the configured origin allow-list.
// Unlisted origins fall back to the first configured one.
func AllowOrigins(origins []string, next http.Handler) http.Handler {
	methods := strings.Join([]string{
		http.MethodGet, http.MethodHead, http.MethodPut,
		http.MethodPatch, http.MethodPost, http.MethodDelete,
	}, ",")

	hf := func(w http.ResponseWriter, r *http.Request) {
		if len(origins) != 0 {
			origin := r.Header.Get("Origin")
			if !slices.Contains(origins, origin) {
				origin = origins[0]
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers",
				"Origin, X-Requested-With, Content-Type, Accept")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// RequestID tags every request with an id echoed in the response, so log
// lines and replies can be correlated.
func RequestID(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}
