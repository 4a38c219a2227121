package middleware

import "net/http"

// ViewerCSP only allows the page's own inline script and style. Nothing is
// fetched and the page cannot be framed.
const ViewerCSP = "default-src 'none'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; " +
	"base-uri 'none'; form-action 'none'; frame-ancestors 'none'"

// NoStore marks responses as private to the recipient: not cached, not
// indexed, and never leaked through the Referer header.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Robots-Tag", "noindex, nofollow")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", ViewerCSP)
		next.ServeHTTP(w, r)
	})
}
