// Package staticfiles serves the storefront's public assets. It sits
// outside the request-handling core behind a single Serve call.
package staticfiles

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".ico":  "image/x-icon",
}

type Handler struct {
	root string
}

func New(root string) *Handler {
	return &Handler{root: root}
}

// Serve resolves a request path under the public directory and returns
// the file contents with their MIME type. Paths that escape the root or
// miss a file report ok=false.
func (h *Handler) Serve(reqPath string) (body []byte, contentType string, ok bool) {
	if reqPath == "/" {
		reqPath = "/index.html"
	}

	clean := path.Clean("/" + reqPath)
	full := filepath.Join(h.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, filepath.Clean(h.root)+string(filepath.Separator)) {
		return nil, "", false
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil, "", false
	}
	body, err = os.ReadFile(full)
	if err != nil {
		return nil, "", false
	}

	contentType = mimeTypes[strings.ToLower(filepath.Ext(full))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return body, contentType, true
}
