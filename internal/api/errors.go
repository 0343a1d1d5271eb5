package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/composer"
	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/parser"
	"github.com/dgallion1/docdraft/internal/pipeline"
	"github.com/dgallion1/docdraft/internal/synthesis"
)

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var missingKey *llm.MissingKeyError
	var missingInput *composer.MissingInputError
	switch {
	case errors.As(err, &missingKey):
		return http.StatusUnprocessableEntity
	case errors.As(err, &missingInput),
		errors.Is(err, composer.ErrUnknownSection),
		errors.Is(err, synthesis.ErrEmptyDocument),
		errors.Is(err, parser.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	jsonError(w, err.Error(), code)
}
