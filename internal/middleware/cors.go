package middleware

import (
	"net/http"
	"strings"
)

// CORS 返回跨域中间件。origins 为空或包含 "*" 时允许任意来源。
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				header := w.Header()
				header.Add("Vary", "Origin")
				if allowAll {
					header.Set("Access-Control-Allow-Origin", "*")
				} else if _, ok := allowed[origin]; ok {
					header.Set("Access-Control-Allow-Origin", origin)
				}
				header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			}

			// preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
