// Package composer writes report sections and the supporting innovation and
// market analyses.
package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
	"github.com/dgallion1/docdraft/internal/search"
)

// Section identifies a report section.
type Section string

const (
	General    Section = "general"
	Context    Section = "1.1"
	Market     Section = "1.2"
	Innovation Section = "1.3"
	Conclusion Section = "1.5"
	Company    Section = "1.6"
	Activities Section = "1.7"
)

// Sections lists the accepted identifiers in display order.
var Sections = []Section{General, Context, Market, Innovation, Conclusion, Company, Activities}

// Titles are the human-readable section names.
var Titles = map[Section]string{
	General:    "Rédiger en suivant un exemple",
	Context:    "Contexte et besoin objectif",
	Market:     "Étude de marché",
	Innovation: "Innovation Produit et Progrès",
	Conclusion: "Indicateurs ou conclusion sur l'innovation",
	Company:    "Présentation de l'entreprise",
	Activities: "Présentation des activités d'innovation",
}

// Input field names used in MissingInputError.
const (
	FieldContent   = "content"
	FieldSynthesis = "synthesis"
	FieldSolution  = "solution_name"
	FieldCompany   = "company_name"
	FieldExample   = "example"
)

// required maps each section to the inputs it cannot do without.
var required = map[Section][]string{
	General:    {FieldExample},
	Context:    {FieldSynthesis},
	Market:     {FieldSolution},
	Innovation: {FieldSolution},
	Conclusion: nil,
	Company:    {FieldCompany},
	Activities: {FieldSynthesis},
}

const (
	sectionSystem    = "Vous êtes un rédacteur professionnel spécialisé dans les rapports stratégiques."
	noCompanyData    = "Aucune donnée disponible sur l'entreprise."
	noCompetitorData = "Aucune donnée disponible sur les concurrents."
	returnOnlyText   = "Retourne uniquement le texte rédigé, sans commentaire ni introduction."
)

// ErrUnknownSection is returned for identifiers outside Sections.
var ErrUnknownSection = eris.New("unknown section: use general, 1.1, 1.2, 1.3, 1.5, 1.6 or 1.7")

// MissingInputError reports a required input left empty.
type MissingInputError struct {
	Section string
	Field   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s requires %s", e.Section, e.Field)
}

// Inputs are the free-text inputs of a section.
type Inputs struct {
	Content      string `json:"content"` // Material to draft from (analysis output, notes)
	Synthesis    string `json:"synthesis"`
	SolutionName string `json:"solution_name"`
	CompanyName  string `json:"company_name"`
	Example      string `json:"example"` // Optional style example; required for General
}

func (in Inputs) field(name string) string {
	switch name {
	case FieldContent:
		return in.Content
	case FieldSynthesis:
		return in.Synthesis
	case FieldSolution:
		return in.SolutionName
	case FieldCompany:
		return in.CompanyName
	case FieldExample:
		return in.Example
	}
	return ""
}

// Composer assembles section prompts and runs them.
type Composer struct {
	gen    llm.Generator
	search search.Searcher
	log    *zap.Logger
}

func New(gen llm.Generator, searcher search.Searcher, log *zap.Logger) *Composer {
	return &Composer{gen: gen, search: searcher, log: log}
}

// Validate checks the section identifier and its required inputs without
// making any call.
func Validate(section Section, in Inputs) error {
	fields, ok := required[section]
	if !ok {
		return eris.Wrapf(ErrUnknownSection, "%q", string(section))
	}
	for _, f := range fields {
		if strings.TrimSpace(in.field(f)) == "" {
			return &MissingInputError{Section: "section " + string(section), Field: f}
		}
	}
	return nil
}

// Section drafts one report section.
func (c *Composer) Section(ctx context.Context, section Section, in Inputs) (string, error) {
	if err := Validate(section, in); err != nil {
		return "", err
	}
	log := c.log.With(zap.String("section", string(section)))

	webData := ""
	if section == Company {
		webData = c.searchOr(ctx, log,
			fmt.Sprintf("presentation of the company %s including history, values, projects, and solutions", in.CompanyName),
			noCompanyData)
	}

	prompt := sectionPrompt(section, in, webData)
	out, err := c.gen.Generate(ctx, llm.Request{
		System:      sectionSystem,
		User:        prompt,
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", eris.Wrapf(err, "draft section %s", section)
	}
	log.Info("section drafted", zap.Int("chars", len(out)))
	return out, nil
}

// searchOr runs a web search, returning fallback when it fails or is empty.
func (c *Composer) searchOr(ctx context.Context, log *zap.Logger, query, fallback string) string {
	if c.search == nil {
		return fallback
	}
	res, err := c.search.Search(ctx, query)
	if err != nil {
		log.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return fallback
	}
	if strings.TrimSpace(res) == "" {
		return fallback
	}
	return res
}

func sectionPrompt(section Section, in Inputs, webData string) string {
	base := sectionSystem
	if section != General {
		base += fmt.Sprintf(" Rédigez la section %s d'un rapport.", section)
	}
	if in.Example != "" {
		base += fmt.Sprintf(" Adaptez le style, la structure et le ton de l'exemple suivant : \n%s\n\n", in.Example) +
			"Assurez-vous que le texte rédigé respecte ces caractéristiques tout en suivant les instructions spécifiques ci-dessous."
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString(" ")

	switch section {
	case General:
		b.WriteString("Votre tâche est de rédiger un texte en suivant le style, la structure et le ton de l'exemple fourni. ")
		fmt.Fprintf(&b, "Voici le contenu à rédiger : \n%s\n\n", in.Content)

	case Context:
		b.WriteString("Parlez du pourquoi du projet, du besoin auquel il cherche à répondre, " +
			"ce qui manquait et que le projet cherche à combler, de ce en quoi le projet consiste, " +
			"et de comment le projet cherche à répondre au besoin. Mentionnez également " +
			"ce qui en fait la principale innovation. ")
		fmt.Fprintf(&b, "Voici la synthèse de la solution : \n%s\n\n", in.Synthesis)
		fmt.Fprintf(&b, "Voici les informations supplémentaires (étude de marché) : \n%s\n\n", in.Content)

	case Market:
		s := in.SolutionName
		fmt.Fprintf(&b, "Rédigez une étude de marché pour la solution %s. ", s)
		b.WriteString("Présentez 4 solutions concurrentes sur le marché (de préférence français). ")
		fmt.Fprintf(&b, "Pour chaque solution, décrivez sur plusieurs lignes : le besoin qu'elle adresse, ses fonctionnalités principales, "+
			"et montrez en quoi elle est inférieure à %s. ", s)
		fmt.Fprintf(&b, "Concluez en présentant %s comme une solution innovante qui comble ces lacunes. ", s)
		fmt.Fprintf(&b, "Voici les informations sur les concurrents (étude de marché) : \n%s\n\n", in.Content)
		b.WriteString("Structurez le texte comme suit : \n")
		fmt.Fprintf(&b, "- Introduction : Indiquez qu'il n'existe pas de solution identique à %s, mais mentionnez des références pertinentes.\n", s)
		b.WriteString("- Pour chaque concurrent (4 au total) :\n")
		b.WriteString("  - [Nom de la solution] : [Description, besoin adressé, fonctionnalités principales].\n")
		fmt.Fprintf(&b, "  - Infériorité par rapport à %s : [Explication].\n", s)
		fmt.Fprintf(&b, "- Conclusion : Présentez %s comme innovante, en expliquant comment elle surpasse les concurrents.\n", s)

	case Innovation:
		s := in.SolutionName
		fmt.Fprintf(&b, "Présentez tous les éléments innovants qui distinguent la solution %s de la concurrence. ", s)
		fmt.Fprintf(&b, "Décrivez les objectifs de %s et expliquez comment ses innovations la rendent unique sur le marché. ", s)
		b.WriteString("Mettez en avant les technologies, fonctionnalités ou approches qui la démarquent. ")
		fmt.Fprintf(&b, "Voici les détails sur l'innovation (analyse d'innovation) : \n%s\n\n", in.Content)
		b.WriteString("Structurez le texte comme suit : \n")
		fmt.Fprintf(&b, "- Introduction : Présentez l'objectif principal de %s et son positionnement innovant.\n", s)
		b.WriteString("- Points d'innovation : Listez et détaillez chaque élément innovant (ex. technologies, fonctionnalités spécifiques).\n")
		b.WriteString("- Conclusion : Expliquez comment ces innovations redéfinissent les normes du secteur.\n")

	case Conclusion:
		b.WriteString("Faites une conclusion en utilisant les informations sur l'innovation de la solution. ")
		fmt.Fprintf(&b, "Voici les informations sur l'innovation (étude de marché) : \n%s\n\n", in.Content)

	case Company:
		fmt.Fprintf(&b, "Présentez l'entreprise %s, son historique, ses valeurs, ses projets, et ses solutions. ", in.CompanyName)
		fmt.Fprintf(&b, "Voici les informations récupérées sur le web : \n%s\n\n", webData)

	case Activities:
		b.WriteString("Présentez la solution innovante (présentation, objectif et innovations). ")
		fmt.Fprintf(&b, "Voici la synthèse de la solution : \n%s\n\n", in.Synthesis)
		fmt.Fprintf(&b, "Voici les informations supplémentaires (étude de marché) : \n%s\n\n", in.Content)
	}

	b.WriteString(returnOnlyText)
	return b.String()
}
