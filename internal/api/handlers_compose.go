package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docdraft/internal/composer"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	var req pipeline.SectionRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.svc.Section(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"section": string(req.Section),
		"title":   composer.Titles[req.Section],
		"text":    out,
	})
}

func (s *Server) handleInnovation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		composer.InnovationInputs
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := s.svc.Innovation(r.Context(), req.Provider, req.InnovationInputs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		composer.MarketInputs
	}
	if !decode(w, r, &req) {
		return
	}
	out, err := s.svc.Market(r.Context(), req.Provider, req.MarketInputs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out})
}

// handleSynthesis builds a structured synthesis from an uploaded .docx
// (form field "file", optional "provider").
func (s *Server) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".docx") {
		jsonError(w, "synthesis requires a .docx file", http.StatusBadRequest)
		return
	}

	out, err := s.svc.Synthesize(r.Context(), r.FormValue("provider"), file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": out})
}
