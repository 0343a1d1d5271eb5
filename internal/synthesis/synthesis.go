// Package synthesis produces the project digests that steer navigation and
// drafting prompts.
package synthesis

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/parser"
)

// Fallback replaces the condensed synthesis when generation fails.
const Fallback = "Projet axé sur des objectifs stratégiques et techniques, nécessitant une analyse ciblée."

// ErrEmptyDocument is returned when a Word document has no text.
var ErrEmptyDocument = eris.New("synthesis: document is empty")

// Purpose selects what the condensed synthesis will steer.
type Purpose int

const (
	ForNavigation Purpose = iota
	ForDrafting
	ForWorkDrafting
)

func (p Purpose) goal() string {
	if p == ForNavigation {
		return "guider l'évaluation de pertinence des fichiers"
	}
	return "guider la rédaction des travaux"
}

func (p Purpose) focus() string {
	if p == ForWorkDrafting {
		return "les objectifs clés et la pertinence des fichiers"
	}
	return "les objectifs clés"
}

// Condense asks for a digest of at most 50 words. It never fails: generation
// errors are logged and the fixed Fallback is returned.
func Condense(ctx context.Context, gen llm.Generator, projectSynthesis string, purpose Purpose, log *zap.Logger) string {
	prompt := fmt.Sprintf(
		"Vous êtes un expert en synthèse de projets. À partir de cette synthèse détaillée : '%s', "+
			"créez une version succincte et percutante (maximum 50 mots) pour %s. "+
			"Cette synthèse doit refléter %s sans détails superflus.",
		projectSynthesis, purpose.goal(), purpose.focus(),
	)

	out, err := gen.Generate(ctx, llm.Request{User: prompt, MaxTokens: 60, Temperature: 0.3})
	if err != nil {
		log.Error("condensed synthesis failed, using fallback", zap.Error(err))
		return Fallback
	}
	if out == "" {
		log.Warn("condensed synthesis empty, using fallback")
		return Fallback
	}
	log.Info("condensed synthesis", zap.String("synthesis", out))
	return out
}

// Structure turns the scattered notes of a .docx into a structured synthesis
// (introduction and key points, at most 300 words).
func Structure(ctx context.Context, gen llm.Generator, r io.Reader) (string, error) {
	paras, err := parser.DOCXParagraphs(r)
	if err != nil {
		return "", eris.Wrap(err, "synthesis: read document")
	}
	raw := strings.Join(paras, "\n")
	if raw == "" {
		return "", ErrEmptyDocument
	}

	prompt := "Vous êtes un expert en synthèse de documents. À partir du contenu suivant extrait d'un fichier Word :\n" +
		"'" + raw + "'\n\n" +
		"Générez une synthèse structurée en trois parties :\n" +
		"1. **Introduction** : Résumez le contexte général et l'objectif principal des informations.\n" +
		"2. **Points Clés** : Identifiez et listez les informations essentielles sous forme de puces.\n" +
		"La synthèse doit être concise (maximum 300 mots) et claire."

	out, err := gen.Generate(ctx, llm.Request{User: prompt, MaxTokens: 400, Temperature: 0.4})
	if err != nil {
		return "", eris.Wrap(err, "synthesis: generate")
	}
	return out, nil
}
