package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/changelog/internal/client"
	"github.com/JonMunkholm/changelog/internal/config"
	"github.com/JonMunkholm/changelog/internal/logging"
)

type authError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// APIKeyAuth guards the data API with the X-API-Key header. It passes every
// request through when RequireAPIKey is off, and rejects every request when
// it is on but no keys are configured.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(client.APIKeyHeader)
			if key == "" {
				reject(w, r, http.StatusUnauthorized, authError{"missing API key", "AUTH001"})
				return
			}
			if !validKey(key, cfg.APIKeys) {
				reject(w, r, http.StatusForbidden, authError{"invalid API key", "AUTH002"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, status int, body authError) {
	logging.FromContext(r.Context()).Warn("auth: rejected",
		"reason", body.Error,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// validKey compares against every configured key in constant time.
func validKey(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}
