package server

import (
	"log"
	"net/http"
	"time"
)

// rssHandler re-publishes a section as RSS 2.0
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	if _, ok := s.config.GetSections()[section]; !ok {
		http.Error(w, "Section not found", http.StatusNotFound)
		return
	}

	doc, err := s.documents.Document(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to build feed for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	items, _ := doc.Section(section, s.config.GetDocumentConfig().General)
	rss, err := s.generator.GenerateRSS(items, section, doc.LastBuildDate)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	s.setCacheHeaders(w)
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

// opmlHandler exports configured sources as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, _ *http.Request) {
	opml, err := s.generator.GenerateOPML(s.config.GetSections(), time.Now())
	if err != nil {
		log.Printf("[ERROR] failed to generate OPML: %v", err)
		http.Error(w, "Failed to generate OPML", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	if _, err := w.Write([]byte(opml)); err != nil {
		log.Printf("[ERROR] failed to write OPML response: %v", err)
	}
}
