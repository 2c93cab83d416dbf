package server

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// siteHandler serves files from the output directory. With live reload on,
// HTML pages are read and served with the reload script injected; every
// other file goes through http.FileServer.
type siteHandler struct {
	dir        string
	liveReload bool
	files      http.Handler
}

func newSiteHandler(dir string, liveReload bool) *siteHandler {
	return &siteHandler{
		dir:        dir,
		liveReload: liveReload,
		files:      http.FileServer(http.Dir(dir)),
	}
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.liveReload {
		h.files.ServeHTTP(w, r)
		return
	}

	file, ok := h.pageFile(r.URL.Path)
	if !ok {
		h.files.ServeHTTP(w, r)
		return
	}
	data, err := os.ReadFile(file)
	if err != nil {
		h.files.ServeHTTP(w, r)
		return
	}

	body := injectLiveReload(string(data))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, file, time.Time{}, bytes.NewReader([]byte(body)))
}

// pageFile maps a URL path to an HTML file in the output directory. Paths
// ending in a slash resolve to their index.html.
func (h *siteHandler) pageFile(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if strings.HasSuffix(urlPath, "/") {
		clean = path.Join(clean, "index.html")
	}
	if !strings.EqualFold(path.Ext(clean), ".html") {
		return "", false
	}
	file := filepath.Join(h.dir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", false
	}
	return file, true
}
