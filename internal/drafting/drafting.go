// Package drafting turns selected chunks into "work performed" prose.
package drafting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/chunker"
	"github.com/dgallion1/docdraft/internal/document"
	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/navigator"
)

const (
	// ContextWords is how much of the previous block is carried forward.
	ContextWords = 30
	// MinContextWords is the size below which a previous block gives no context.
	MinContextWords = 20

	// NothingDrafted replaces an empty output.
	NothingDrafted = "Aucun travaux rédigé pour les fichiers traités."

	unknownInfo = "Informations non disponibles"
)

// Output is the result of a drafting run.
type Output struct {
	Blocks []string        // Prose blocks and inline markers, in input order
	Works  []document.Work // Successfully drafted prose only
}

// Text joins the blocks with blank lines.
func (o Output) Text() string {
	return JoinBlocks(o.Blocks)
}

// JoinBlocks joins blocks with blank lines, or returns NothingDrafted.
func JoinBlocks(blocks []string) string {
	if len(blocks) == 0 {
		return NothingDrafted
	}
	return strings.Join(blocks, "\n\n")
}

// Drafter drafts one prose block per selected chunk, sequentially, carrying
// the tail of each block into the next prompt.
type Drafter struct {
	gen llm.Generator
	log *zap.Logger
}

func New(gen llm.Generator, log *zap.Logger) *Drafter {
	return &Drafter{gen: gen, log: log}
}

// Draft processes refs in order. Failures never abort the batch: they become
// inline markers. digest is the condensed project synthesis.
func (d *Drafter) Draft(ctx context.Context, set *document.Set, refs []document.Ref, digest string) Output {
	var out Output
	previous := ""

	for _, ref := range refs {
		log := d.log.With(zap.String("file", ref.File), zap.Int("chunk", ref.Position))

		src, ok := set.Find(ref.File)
		if !ok {
			log.Warn("no content for file")
			out.Blocks = append(out.Blocks, fmt.Sprintf("--- Aucun contenu pour %s ---", ref.File))
			continue
		}
		chunk, ok := src.Chunk(ref.Position)
		if !ok {
			log.Warn("chunk not found")
			out.Blocks = append(out.Blocks, fmt.Sprintf("--- Morceau %d non trouvé pour %s ---", ref.Position, ref.File))
			continue
		}

		info := src.Info
		if info == "" {
			info = unknownInfo
		}
		prompt := draftPrompt(digest, ref, info, chunk.Text, trailingContext(previous))

		works, err := d.gen.Generate(ctx, llm.Request{User: prompt, MaxTokens: 1000, Temperature: 0.5})
		if err != nil {
			log.Error("drafting failed", zap.Error(err))
			out.Blocks = append(out.Blocks, fmt.Sprintf("Erreur lors de la rédaction du morceau %d pour %s : %s", ref.Position, ref.File, err))
			continue
		}

		if works == "" || isNotDrafted(works) {
			log.Warn("nothing drafted")
			out.Blocks = append(out.Blocks, fmt.Sprintf("--- Aucun travaux pour %s, partie %d ---", ref.File, ref.Position))
			previous = ""
			continue
		}

		log.Info("chunk drafted", zap.Int("words", chunker.CountWords(works)))
		out.Blocks = append(out.Blocks, fmt.Sprintf("Travaux (source : %s, partie %d) : %s", ref.File, ref.Position, works))
		out.Works = append(out.Works, document.Work{Ref: ref, Text: works})
		previous = works
	}

	if len(out.Blocks) == 0 {
		d.log.Warn("nothing drafted for any file")
	}
	return out
}

// trailingContext returns the last ContextWords words of previous, or ""
// when previous is shorter than MinContextWords.
func trailingContext(previous string) string {
	if chunker.CountWords(previous) < MinContextWords {
		return ""
	}
	return chunker.LastWords(previous, ContextWords)
}

func isNotDrafted(s string) bool {
	return strings.EqualFold(strings.Trim(s, "'\"`. "), navigator.NotDrafted)
}

func draftPrompt(digest string, ref document.Ref, info, text, lastWords string) string {
	if t := strings.TrimSpace(text); t != "" {
		text = t
	} else {
		text = "Morceau vide"
	}
	var b strings.Builder
	b.WriteString("Vous êtes un rédacteur de travaux scientifiques.\n")
	fmt.Fprintf(&b, "La synthèse succincte du projet est : %s.\n", digest)
	fmt.Fprintf(&b, "Vous travaillez sur le fichier '%s'.\n", ref.File)
	fmt.Fprintf(&b, "Informations sur le fichier : %s.\n", info)
	fmt.Fprintf(&b, "Morceau %d : %s\n\n", ref.Position, text)
	fmt.Fprintf(&b, "Continuez à partir de : %s avec le contenu de ce morceau. ", lastWords)
	b.WriteString("Rédigez directement les travaux en utilisant 'nous' comme sujet, avec très peu de puces, " +
		"et mentionnez les difficultés rencontrées (s'il y en a). La rédaction doit être complète, logique et claire.\n")
	b.WriteString("Ne décrivez pas le contenu du morceau, transformez-le en travaux réalisés. Évitez les introductions ou commentaires généraux.")
	return b.String()
}
