package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgallion1/docdraft/internal/artifact"
	"github.com/dgallion1/docdraft/internal/pipeline"
)

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pipeline.NavigateRequest
	if !decode(w, r, &req) {
		return
	}
	req.Paths, req.Infos = sess.Files()

	res, err := s.svc.Navigate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// draftBody accepts refs directly or as chunk list text.
type draftBody struct {
	pipeline.DraftRequest
	ChunkList string `json:"chunk_list"`
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body draftBody
	if !decode(w, r, &body) {
		return
	}

	req := body.DraftRequest
	var bad []artifact.LineError
	if body.ChunkList != "" {
		refs, lineErrs, err := artifact.ParseRefs(strings.NewReader(body.ChunkList))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		req.Refs = append(req.Refs, refs...)
		bad = lineErrs
	}
	if len(req.Refs) == 0 && len(req.All) == 0 {
		jsonError(w, "no chunks to draft: give refs, chunk_list or all", http.StatusBadRequest)
		return
	}
	req.Paths, req.Infos = sess.Files()

	res, err := s.svc.Draft(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if bad == nil {
		bad = []artifact.LineError{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":      res.RunID,
		"text":        res.Text,
		"works":       res.Works,
		"errors":      res.Errors,
		"line_errors": bad,
	})
}

func (s *Server) handleWorkDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pipeline.WorkDraftRequest
	if !decode(w, r, &req) {
		return
	}
	req.Paths, req.Infos = sess.Files()

	res, err := s.svc.WorkDraft(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
