package navigator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dgallion1/docdraft/internal/llm"
)

// LLMStrategy lets the model judge each chunk and pick the next one.
type LLMStrategy struct {
	gen llm.Generator
}

func NewLLMStrategy(gen llm.Generator) *LLMStrategy {
	return &LLMStrategy{gen: gen}
}

func (s *LLMStrategy) InitialGuess(ctx context.Context, file FileContext) (string, error) {
	prompt := fmt.Sprintf(
		"Vous êtes un analyste de projet. À partir de la synthèse du projet : '%s', "+
			"du nom du fichier : '%s', et des informations suivantes : %s, "+
			"estimez la pertinence de ce fichier pour rédiger des travaux réalisés dans le projet. "+
			"Fournissez une estimation (max 90 mots) en expliquant si le fichier contient des éléments "+
			"techniques, stratégiques ou directement liés aux travaux réalisés, ou s'il est non pertinent "+
			"(ex. documentation d'une librairie ou d'une autre solution, cahier des charges non lié, "+
			"tout ce qui ne renseigne pas sur ce qui a été fait dans le projet).",
		file.Synthesis, file.Name, file.Info,
	)
	out, err := s.gen.Generate(ctx, llm.Request{User: prompt, MaxTokens: 200, Temperature: 0.5})
	if err != nil {
		return "", eris.Wrapf(err, "initial guess for %s", file.Name)
	}
	return out, nil
}

func (s *LLMStrategy) PickNext(ctx context.Context, st State) (Decision, error) {
	out, err := s.gen.Generate(ctx, llm.Request{User: navigationPrompt(st), MaxTokens: 400, Temperature: 0.5})
	if err != nil {
		return Decision{}, eris.Wrapf(err, "evaluate chunk %d of %s", st.Chunk.Position, st.File.Name)
	}
	return ParseDecision(out)
}

func navigationPrompt(st State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vous êtes un analyste de projet. La synthèse succincte du projet est : %s.\n", st.File.Digest)
	fmt.Fprintf(&b, "Vous travaillez sur le fichier '%s' (total chunks : %d).\n", st.File.Name, st.File.Total)
	fmt.Fprintf(&b, "Informations sur le fichier : %s.\n", st.File.Info)
	fmt.Fprintf(&b, "Guess actuel sur le fichier : %s.\n", st.Guess)
	fmt.Fprintf(&b, "Morceaux déjà analysés : %s.\n", formatVisited(st.Visited))
	b.WriteString("Voici le morceau à évaluer :\n")
	fmt.Fprintf(&b, "Morceau %d : %s\n\n", st.Chunk.Position, chunkText(st.Chunk.Text))
	b.WriteString("**Objectif** : Tri des chunks pour identifier ceux qui contiennent des informations sur les travaux réalisés dans le projet. " +
		"Ignorez les contenus non pertinents comme les documentations externes, les cahiers des charges ou tout autre fichier ou chunk non lié aux travaux du projet.\n")
	b.WriteString("**Stratégie de parcours** : Élaborez une stratégie efficace, surtout pour les fichiers longs (>10 chunks). Vous pouvez :\n")
	b.WriteString("- Sauter des chunks selon le guess.\n")
	b.WriteString("- Revenir en arrière selon le guess.\n")
	b.WriteString("- Arrêter rapidement ('fin') si le fichier semble non pertinent.\n")
	b.WriteString("**Instructions importantes** : Retournez une réponse dans ce format exact :\n")
	b.WriteString("Pertinent: oui ou non\n")
	b.WriteString("Explication: raison de la décision (max 40 mots)\n")
	b.WriteString("Guess: nouveau guess (max 80 mots)\n")
	fmt.Fprintf(&b, "Prochain morceau: numéro entre 1 et %d ou 'fin'\n", st.File.Total)
	b.WriteString("Étape 1 : Déterminez si ce chunk contient des éléments liés aux travaux réalisés.\n")
	b.WriteString("Étape 2 : Expliquez brièvement.\n")
	b.WriteString("Étape 3 : Mettez à jour le guess.\n")
	b.WriteString("Étape 4 : Choisissez le prochain morceau stratégiquement.")
	return b.String()
}

// WorkStrategy navigates like LLMStrategy but has the model draft the
// chunk as project work in the same call.
type WorkStrategy struct {
	gen llm.Generator
}

func NewWorkStrategy(gen llm.Generator) *WorkStrategy {
	return &WorkStrategy{gen: gen}
}

func (s *WorkStrategy) InitialGuess(ctx context.Context, file FileContext) (string, error) {
	prompt := fmt.Sprintf(
		"Vous êtes un analyste de projet. À partir de la synthèse du projet : '%s', "+
			"du nom du fichier : '%s', et des informations suivantes : %s, "+
			"estimez la pertinence de ce fichier pour rédiger des travaux. "+
			"Retournez uniquement votre estimation (guess) sous forme de texte, en 120 mots au maximum.",
		file.Synthesis, file.Name, file.Info,
	)
	out, err := s.gen.Generate(ctx, llm.Request{User: prompt, MaxTokens: 200, Temperature: 0.5})
	if err != nil {
		return "", eris.Wrapf(err, "initial guess for %s", file.Name)
	}
	return out, nil
}

func (s *WorkStrategy) PickNext(ctx context.Context, st State) (Decision, error) {
	out, err := s.gen.Generate(ctx, llm.Request{User: workPrompt(st), MaxTokens: 1000, Temperature: 0.5})
	if err != nil {
		return Decision{}, eris.Wrapf(err, "draft chunk %d of %s", st.Chunk.Position, st.File.Name)
	}
	return ParseWorkDecision(out)
}

func workPrompt(st State) string {
	var b strings.Builder
	b.WriteString("Vous êtes un rédacteur de travaux réalisés dans le cadre d'un projet.\n")
	b.WriteString("Votre rôle est de rédiger le contenu du fichier (décomposé en chunks) en travaux en lien avec le projet.\n")
	b.WriteString("L'objectif est de faire des guess sur le fichier à l'aide des morceaux et de la synthèse du projet pour décider comment parcourir les chunks.\n")
	b.WriteString("Pour les fichiers longs (chunks >30), sautez des morceaux selon votre guess sur le fichier et le contenu probable des morceaux. " +
		"Vous ne parcourez pas tous les morceaux : au morceau 2, vous pouvez par exemple donner directement le numéro 4 si le morceau 3 n'apporterait pas d'information nouvelle.\n")
	b.WriteString("Vous vous basez sur le guess actuel pour guider le parcours du fichier.\n")
	fmt.Fprintf(&b, "La synthèse succincte du projet est : %s.\n", st.File.Digest)
	fmt.Fprintf(&b, "Vous travaillez sur le fichier '%s'.\n", st.File.Name)
	fmt.Fprintf(&b, "Informations sur le fichier : %s.\n", st.File.Info)
	fmt.Fprintf(&b, "Nombre total de morceaux : %d.\n", st.File.Total)
	fmt.Fprintf(&b, "Morceaux déjà traités : %s.\n", formatVisited(st.Visited))
	fmt.Fprintf(&b, "Guess actuel sur le fichier : %s.\n", st.Guess)
	b.WriteString("Voici le morceau à traiter :\n")
	fmt.Fprintf(&b, "Morceau %d : %s\n\n", st.Chunk.Position, chunkText(st.Chunk.Text))
	b.WriteString("**Instructions importantes** : Vous DEVEZ retourner une réponse dans ce format exact :\n")
	b.WriteString("Travaux: texte rédigé ou 'pas rédigé'\n")
	b.WriteString("Guess: nouveau guess\n")
	b.WriteString("Prochain morceau: numéro ou 'fin'\n")
	b.WriteString("--- Métadonnées ---\n")
	fmt.Fprintf(&b, "Source: %s\n", st.File.Name)
	fmt.Fprintf(&b, "Part_id: %d\n", st.Chunk.Position)
	b.WriteString("Étape 1 : Évaluez le contenu du chunk et son lien avec le projet pour le rédiger en travaux.\n")
	b.WriteString("Étape 2 : S'il y a un lien, rédigez les travaux en utilisant 'nous' comme sujet, avec très peu de puces, " +
		"et mentionnez les difficultés rencontrées (s'il y en a). Présentez aussi l'objectif des travaux.\n")
	b.WriteString("Ne décrivez pas le contenu du morceau : transformez-le pour qu'il se lise comme des travaux réalisés, sans commentaire ni introduction.\n")
	b.WriteString("Les 100 premiers mots du chunk sont identiques à la fin du morceau précédent. Rédigez en tenant compte de ce chevauchement pour éviter les répétitions.\n")
	b.WriteString("Si un chunk a déjà été traité, rédigez directement le corps des travaux, sans phrase de transition.\n\n")
	b.WriteString("Étape 3 : Si le chunk n'a pas de lien avec le projet ou si le contenu n'est pas intéressant, indiquez 'pas rédigé'.\n")
	b.WriteString("Étape 4 : Mettez à jour votre guess sur le fichier en fonction de ce morceau.\n")
	fmt.Fprintf(&b, "Étape 5 : Choisissez le prochain morceau (numéro entre 1 et %d, ou 'fin' si rien à traiter).", st.File.Total)
	return b.String()
}

func chunkText(text string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return "Morceau vide"
}
