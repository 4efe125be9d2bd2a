package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// AllowAll answers every origin with "*" and reflects whatever method
	// and headers a preflight asks for.
	AllowAll bool
}

// DefaultCORSConfig allows any origin, any header and any method. Browser
// pages from any host may subscribe to the feed.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{AllowAll: true}
}

// CORS middleware adds CORS headers to responses and answers preflight
// requests with 204.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case config.AllowAll || len(config.AllowedOrigins) == 0:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && isOriginAllowed(origin, config.AllowedOrigins):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", allowedMethods(config, r))
				if headers := allowedHeaders(config, r); headers != "" {
					h.Set("Access-Control-Allow-Headers", headers)
				}
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allowedMethods(config CORSConfig, r *http.Request) string {
	if config.AllowAll || len(config.AllowedMethods) == 0 {
		return r.Header.Get("Access-Control-Request-Method")
	}
	return strings.Join(config.AllowedMethods, ", ")
}

func allowedHeaders(config CORSConfig, r *http.Request) string {
	if config.AllowAll || len(config.AllowedHeaders) == 0 {
		return r.Header.Get("Access-Control-Request-Headers")
	}
	return strings.Join(config.AllowedHeaders, ", ")
}

// isOriginAllowed checks if an origin is in the allowed list.
func isOriginAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
