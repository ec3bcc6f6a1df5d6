package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/JonMunkholm/worldstats/internal/logging"
)

var (
	errMissingAPIKey = errors.New("missing API key")
	errInvalidAPIKey = errors.New("invalid API key")
)

// APIKeyAuth guards run-triggering endpoints. The key is read from the
// X-API-Key header or an "Authorization: Bearer" header.
//
// With RequireAPIKey unset every request passes. With it set and no keys
// configured every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := requestAPIKey(r)
			switch {
			case key == "":
				rejectAuth(w, r, errMissingAPIKey, http.StatusUnauthorized)
			case !keyAllowed(key, cfg.APIKeys):
				rejectAuth(w, r, errInvalidAPIKey, http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func requestAPIKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// keyAllowed compares key against every configured key so the time taken
// does not depend on which key matched.
func keyAllowed(key string, allowed []string) bool {
	match := 0
	for _, k := range allowed {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}

func rejectAuth(w http.ResponseWriter, r *http.Request, err error, status int) {
	logging.FromContext(r.Context()).Warn("run request rejected",
		"reason", err.Error(),
		"method", r.Method,
		"path", r.URL.Path,
		"ip", r.RemoteAddr,
	)

	msg := core.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
