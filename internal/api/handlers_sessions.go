package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/document"
	"github.com/dgallion1/docdraft/internal/parser"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

type sessionFile struct {
	Name        string `json:"name"`
	Chunks      int    `json:"chunks"`
	LowPriority int    `json:"low_priority"`
}

// handleCreateSession stages uploaded files in a new session. Form fields:
// files (repeated) and infos (repeated, index-aligned with files).
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	infos := r.MultipartForm.Value["infos"]

	sess, err := s.sessions.Create()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	log := s.log.With(zap.String("session_id", sess.ID))

	var errs []document.FileError
	for i, fh := range files {
		name := sanitizeFilename(fh.Filename)
		info := ""
		if i < len(infos) {
			info = strings.TrimSpace(infos[i])
		}

		f, err := fh.Open()
		if err != nil {
			errs = append(errs, document.FileError{File: name, Message: "failed to open file"})
			continue
		}
		_, err = sess.AddFile(name, f, info)
		f.Close()
		if err != nil {
			log.Warn("upload rejected", zap.String("file", name), zap.Error(err))
			msg := err.Error()
			switch {
			case errors.Is(err, parser.ErrUnsupported):
				msg = fmt.Sprintf("unsupported file type: %s", filepath.Ext(name))
			case errors.Is(err, pipeline.ErrDuplicateFile):
				msg = fmt.Sprintf("duplicate file name: %s", name)
			}
			errs = append(errs, document.FileError{File: name, Message: msg})
		}
	}

	paths, storedInfos := sess.Files()
	batch := s.svc.Load(paths, storedInfos)
	errs = append(errs, batch.Errors...)

	stored := make([]sessionFile, 0, len(batch.Sources))
	for _, src := range batch.Sources {
		sf := sessionFile{Name: src.Name, Chunks: len(src.Chunks)}
		for _, c := range src.Chunks {
			if c.LowPriority {
				sf.LowPriority++
			}
		}
		stored = append(stored, sf)
	}
	if errs == nil {
		errs = []document.FileError{}
	}
	log.Info("session created", zap.Int("files", len(paths)), zap.Int("errors", len(errs)))

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"files":      stored,
		"errors":     errs,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*pipeline.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
