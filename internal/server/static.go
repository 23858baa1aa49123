package server

import (
	"net/http"
	"strings"
)

// StaticHandler serves files below root for non-API paths.
//
// With an empty root, or for unmatched /api/ paths, it answers with a 404 envelope.
func StaticHandler(root string) http.Handler {
	var files http.Handler
	if root = strings.TrimSpace(root); root != "" {
		files = http.FileServer(http.Dir(root))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if files == nil || strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		files.ServeHTTP(w, r)
	})
}
