package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/worldstats/internal/core"
)

// WithRequestMetadata records the request's client as the run trigger.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithTrigger(ctx, core.Trigger{IP: clientIP(r), UserAgent: r.UserAgent()})
}

// clientIP returns the request's client address without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
