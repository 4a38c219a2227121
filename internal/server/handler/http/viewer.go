// Package http provides the HTTP handlers of the viewer host.
package http

import (
	"bytes"
	"net/http"
	"time"
)

// ViewerHandler serves the static recipient page.
type ViewerHandler struct {
	// Page is the HTML document served for every share link.
	Page []byte
	// ModTime is reported to conditional requests; zero disables them.
	ModTime time.Time
}

// Show handles GET /secret. The query and fragment are interpreted by the
// page itself, so every request receives the same document.
func (h *ViewerHandler) Show(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "viewer.html", h.ModTime, bytes.NewReader(h.Page))
}
