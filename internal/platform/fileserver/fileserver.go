// Package fileserver serves a directory the way the local preview server does: "/" and
// directories map to index.html, the content type comes from a fixed extension table and a
// miss is a plain "404 Not Found".
package fileserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ridloal/storefront-sync/internal/platform/logger"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".json": "application/json",
}

const fallbackType = "application/octet-stream"

func ContentType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return fallbackType
}

type Handler struct {
	root string
}

func New(root string) *Handler {
	return &Handler{root: root}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Clean against "/" so the request can never climb above root.
	clean := path.Clean("/" + r.URL.Path)
	name := filepath.Join(h.root, filepath.FromSlash(clean))
	if clean == "/" {
		name = filepath.Join(h.root, "index.html")
	}

	if info, err := os.Stat(name); err == nil && info.IsDir() {
		name = filepath.Join(name, "index.html")
	}

	data, err := os.ReadFile(name)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404 Not Found"))
		return
	}

	w.Header().Set("Content-Type", ContentType(name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("FileServer: write of "+clean+" failed", err)
	}
}
