package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/umputun/newsportal/pkg/domain"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	sections := s.config.GetSections()
	sources := 0
	for _, srcs := range sections {
		sources += len(srcs)
	}

	status := map[string]interface{}{
		"status":   "ok",
		"version":  s.version,
		"time":     time.Now().UTC(),
		"sections": len(sections),
		"sources":  sources,
	}
	renderJSON(w, r, http.StatusOK, status)
}

// documentHandler serves the whole aggregated document
func (s *Server) documentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Document(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to build feed: %v", err)
		renderError(w, r, errors.New("failed to build feed"), http.StatusInternalServerError)
		return
	}

	s.setCacheHeaders(w)
	renderJSON(w, r, http.StatusOK, doc)
}

// sectionHandler serves items of a single section
func (s *Server) sectionHandler(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	if _, ok := s.config.GetSections()[section]; !ok {
		renderError(w, r, fmt.Errorf("section %q not found", section), http.StatusNotFound)
		return
	}

	doc, err := s.documents.Document(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to build feed: %v", err)
		renderError(w, r, errors.New("failed to build feed"), http.StatusInternalServerError)
		return
	}

	items, _ := doc.Section(section, s.config.GetDocumentConfig().General)
	if items == nil {
		items = []domain.FeedItem{}
	}

	s.setCacheHeaders(w)
	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"section":       section,
		"items":         items,
		"lastBuildDate": doc.LastBuildDate,
	})
}

// setCacheHeaders tells shared caches how long the response stays fresh and how long it may be served stale
func (s *Server) setCacheHeaders(w http.ResponseWriter) {
	cacheCfg := s.config.GetCacheConfig()
	if cacheCfg.Disabled {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d",
		int(cacheCfg.Revalidate.Seconds()), int(cacheCfg.Stale.Seconds())))
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	buf := &bytes.Buffer{}
	if data != nil {
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
			http.Error(w, "can't encode response", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
