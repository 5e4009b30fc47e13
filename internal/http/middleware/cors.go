package middleware

import (
	"net/http"
	"strings"
)

// CORS provides allowlist-based CORS headers for the public contact
// endpoint. An Origin on the allow-list is echoed back; anything else gets
// the first allowed origin, so every response carries CORS headers. The
// endpoint is called cross-origin from static sites only; there is no
// credentialed traffic to protect.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := map[string]struct{}{}
	fallback := ""
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if fallback == "" {
			fallback = origin
		}
		allow[origin] = struct{}{}
	}

	allowedHeaders := "Content-Type, Accept"
	allowedMethods := "POST, OPTIONS"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if _, ok := allow[origin]; !ok {
				origin = fallback
			}
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Max-Age", "600")
			}

			next.ServeHTTP(w, r)
		})
	}
}
