package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// Enabled reports whether requests must present key.
func Enabled(mode, key string) bool {
	return mode == "apikey" && key != ""
}

// Middleware returns an HTTP middleware enforcing the API key in header.
//
// Browsers cannot set headers on a WebSocket handshake, so the key is also
// accepted in the "api_key" query parameter.
func Middleware(mode, header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !Enabled(mode, key) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if got == "" {
				got = r.URL.Query().Get("api_key")
			}
			if got == "" || !equal(got, key) {
				slog.Warn("auth: rejected request", "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid api key"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
