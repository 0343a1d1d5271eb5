package synthesis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/llm/mocks"
)

func buildDOCX(t *testing.T, paragraphs ...string) *bytes.Reader {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	for _, p := range paragraphs {
		w.AddParagraph().AddText(p)
	}
	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestCondense(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.MaxTokens == 60 && r.Temperature == 0.3 && r.System == "" &&
			strings.Contains(r.User, "'Build a chatbot'") &&
			strings.Contains(r.User, "maximum 50 mots") &&
			strings.Contains(r.User, "guider l'évaluation de pertinence des fichiers")
	})).Return("Chatbot projet.", nil).Once()

	out := Condense(context.Background(), gen, "Build a chatbot", ForNavigation, zap.NewNop())
	assert.Equal(t, "Chatbot projet.", out)
}

func TestCondensePurposes(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return strings.Contains(r.User, "la pertinence des fichiers sans détails")
	})).Return("work digest", nil).Once()

	assert.Equal(t, "work digest", Condense(context.Background(), gen, "s", ForWorkDrafting, zap.NewNop()))
}

func TestCondenseFallback(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("network down")).Once()

	out := Condense(context.Background(), gen, "s", ForDrafting, zap.NewNop())
	assert.Equal(t, Fallback, out)
}

func TestCondenseEmptyFallsBack(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", nil).Once()

	assert.Equal(t, Fallback, Condense(context.Background(), gen, "s", ForDrafting, zap.NewNop()))
}

func TestStructure(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.MaxTokens == 400 && r.Temperature == 0.4 &&
			strings.Contains(r.User, "'Objectif du projet\nLivrables'") &&
			strings.Contains(r.User, "**Points Clés**")
	})).Return("1. **Introduction** ...", nil).Once()

	out, err := Structure(context.Background(), gen, buildDOCX(t, "Objectif du projet", "  ", "Livrables"))
	require.NoError(t, err)
	assert.Equal(t, "1. **Introduction** ...", out)
}

func TestStructureEmptyDocument(t *testing.T) {
	gen := mocks.NewMockGenerator(t)

	_, err := Structure(context.Background(), gen, buildDOCX(t, "   "))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrEmptyDocument))
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestStructureGenerationError(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()

	_, err := Structure(context.Background(), gen, buildDOCX(t, "Notes"))
	assert.Error(t, err)
}

func TestStructureNotADocx(t *testing.T) {
	gen := mocks.NewMockGenerator(t)
	_, err := Structure(context.Background(), gen, bytes.NewReader([]byte("plain text")))
	assert.Error(t, err)
}
