package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/worldstats/internal/config"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted proxy keeps remote addr",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "203.0.113.5:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "203.0.113.5:4000",
		},
		{
			name:       "trusted proxy uses X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted proxy uses first X-Forwarded-For",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.2"},
			want:       "5.6.7.8",
		},
		{
			name:       "invalid header ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.1.1:4000",
		},
		{
			name:       "ipv6 trusted proxy",
			trusted:    []string{"::1"},
			remoteAddr: "[::1]:4000",
			headers:    map[string]string{"X-Real-IP": "2001:db8::1"},
			want:       "2001:db8::1",
		},
		{
			name:       "no trusted proxies",
			remoteAddr: "10.1.1.1:4000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "10.1.1.1:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := TrustedRealIP(tt.trusted)(echoRemoteAddr())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name string
		cfg  config.SecurityConfig
		key  string
		want int
	}{
		{"disabled", config.SecurityConfig{}, "", http.StatusNoContent},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"a"}}, "", http.StatusUnauthorized},
		{"wrong key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"a"}}, "b", http.StatusForbidden},
		{"second key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"a", "b"}}, "b", http.StatusNoContent},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "a", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyAuth(&tt.cfg)(ok)

			req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAPIKeyAuth_BearerAndBody(t *testing.T) {
	cfg := config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	h := APIKeyAuth(&cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("bearer status = %d, want 204", rec.Code)
	}

	tests := []struct {
		key  string
		code string
	}{
		{"", "AUTH001"},
		{"nope", "AUTH002"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["code"] != tt.code {
			t.Errorf("key %q: code = %q, want %q", tt.key, body["code"], tt.code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	var seen *responseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
		w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if seen.status != http.StatusTeapot || seen.bytes != 5 {
		t.Errorf("captured status %d, bytes %d", seen.status, seen.bytes)
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/runs", http.StatusCreated, slog.LevelInfo},
		{"/api/dataset/Atlantis", http.StatusNotFound, slog.LevelWarn},
		{"/api/runs", http.StatusInternalServerError, slog.LevelError},
		{"/healthz", http.StatusOK, slog.LevelDebug},
		{"/healthz", http.StatusServiceUnavailable, slog.LevelError},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := requestLevel(r, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s, %d) = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}
