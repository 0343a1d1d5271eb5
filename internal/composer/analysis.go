package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
)

const (
	innovationSystem = "Vous êtes un analyste stratégique spécialisé dans l'innovation technologique."
	marketSystem     = "Vous êtes un analyste de marché spécialisé dans les technologies conversationnelles."
)

// InnovationInputs feed the innovation analysis.
type InnovationInputs struct {
	Synthesis    string `json:"synthesis"`
	SolutionName string `json:"solution_name"`
	CompanyName  string `json:"company_name"`
	WebsiteURL   string `json:"website_url"` // Optional; triggers a web search when set
}

// MarketInputs feed the market study.
type MarketInputs struct {
	Synthesis          string `json:"synthesis"`
	WebInfo            string `json:"web_info"`
	InnovationAnalysis string `json:"innovation_analysis"`
	SolutionName       string `json:"solution_name"`
	CompanyName        string `json:"company_name"`
}

// Innovation judges how innovative a solution is compared with its market.
func (c *Composer) Innovation(ctx context.Context, in InnovationInputs) (string, error) {
	for _, f := range []struct{ name, value string }{
		{FieldSynthesis, in.Synthesis},
		{FieldSolution, in.SolutionName},
		{FieldCompany, in.CompanyName},
	} {
		if strings.TrimSpace(f.value) == "" {
			return "", &MissingInputError{Section: "innovation analysis", Field: f.name}
		}
	}
	log := c.log.With(zap.String("analysis", "innovation"))

	website := ""
	if in.WebsiteURL != "" {
		website = c.searchOr(ctx, log,
			fmt.Sprintf("fonctionnalités et caractéristiques de la solution de %s sur %s", in.CompanyName, in.WebsiteURL),
			"")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici une synthèse de la solution %s de l'entreprise %s : \n%s\n\n", in.SolutionName, in.CompanyName, in.Synthesis)
	if website != "" {
		fmt.Fprintf(&b, "Voici les informations recueillies sur le site web : \n%s\n\n", website)
	}
	b.WriteString(innovationSystem + " ")
	b.WriteString("Analysez si la solution est innovante par rapport au marché et aux pratiques standards dans le secteur de la solution. " +
		"Soyez très critique et franc : si rien n'est innovant, dites-le clairement. " +
		"Identifiez un élément différenciant et innovant, s'il existe, et expliquez pourquoi il est innovant. " +
		"Ensuite, identifiez toutes les fonctionnalités ou approches spécifiques de la solution qui sont innovantes, " +
		"et fournissez une explication pour chacune sur pourquoi elle est considérée comme innovante. " +
		"Si une piste d'innovation potentielle existe (même si elle n'est pas pleinement développée), mentionnez-la. " +
		"Retournez le résultat sous forme de texte structuré comme suit : \n" +
		"Élément différenciant et innovant : [Description et justification]\n" +
		"Fonctionnalités innovantes :\n- [Fonctionnalité 1] : [Explication]\n- [Fonctionnalité 2] : [Explication]\n...\n" +
		"Si aucun élément innovant n'est trouvé, indiquez simplement : \n" +
		"'Aucun élément différenciant ou innovant identifié.'\n" +
		"Dans ce cas, refaites une analyse plus profonde pour proposer une piste d'innovation : " +
		"l'approche, la technicité, le concept ou une combinaison particulière proposée par la solution. " +
		"N'inventez rien et ne proposez pas de moyen de rendre la solution innovante : analysez la solution dans son état actuel, " +
		"sous un angle différent, et reproposez 2 ou 3 éléments comme innovants sous cette nouvelle perspective. " +
		"Si après cela aucun élément innovant n'apparaît, dites-le.\n" +
		"Piste d'Innovation : [Description]")

	out, err := c.gen.Generate(ctx, llm.Request{
		System:      innovationSystem,
		User:        b.String(),
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", eris.Wrap(err, "innovation analysis")
	}
	log.Info("innovation analysis drafted", zap.Bool("website", website != ""))
	return out, nil
}

// Market compares a solution with four competitors found by web search.
func (c *Composer) Market(ctx context.Context, in MarketInputs) (string, error) {
	for _, f := range []struct{ name, value string }{
		{FieldSynthesis, in.Synthesis},
		{FieldSolution, in.SolutionName},
	} {
		if strings.TrimSpace(f.value) == "" {
			return "", &MissingInputError{Section: "market study", Field: f.name}
		}
	}
	log := c.log.With(zap.String("analysis", "market"))
	s := in.SolutionName

	query := fmt.Sprintf("Cherche 4 solutions similaires à %s sur le marché, la présentation, leurs fonctionnalités, points forts et faibles. "+
		"Pour chaque solution, donne le lien web.", s)
	if in.CompanyName != "" {
		query = fmt.Sprintf("Notre solution %s est éditée par %s. ", s, in.CompanyName) + query
	}
	competitors := c.searchOr(ctx, log, query, noCompetitorData)

	var b strings.Builder
	fmt.Fprintf(&b, "Voici la synthèse de notre solution %s : \n%s\n\n", s, in.Synthesis)
	fmt.Fprintf(&b, "Les informations sur le site web de la solution : \n%s\n\n", in.WebInfo)
	fmt.Fprintf(&b, "L'analyse de l'innovation donne ceci : \n%s\n\n", in.InnovationAnalysis)
	b.WriteString("Tu te bases dessus pour montrer que la solution est innovante par rapport aux autres.\n\n")
	b.WriteString("Peux-tu chercher les solutions qui ressemblent à notre solution sur le marché ? Et :\n")
	b.WriteString("1- Confirmer qu'elle est innovante ?\n")
	b.WriteString("2- Offrir une comparaison avec 04 solutions concurrentes :\n")
	b.WriteString("   - Pour chaque solution : tu la présentes\n")
	b.WriteString("   - Tu listes ses fonctionnalités\n")
	b.WriteString("   - Tu listes les points forts\n")
	b.WriteString("   - Tu listes les points faibles\n")
	fmt.Fprintf(&b, "   - Tu montres en quoi %s est différent et supérieur\n\n", s)
	b.WriteString("3- A la fin, tu rajoutes les noms des solutions et leur référence (lien web).\n")
	b.WriteString("Voici le modèle :\nRéférences :\n[1]\t[Solution 1]: lien 1\n[2]\t[Solution 2]: lien 2\n...\n")
	fmt.Fprintf(&b, "Les données sur les concurrents sont : \n%s\n\n", competitors)
	b.WriteString("Retourne le résultat sous forme de texte structuré comme suit :\n")
	b.WriteString("Confirmation de l'innovation : [Description basée sur l'analyse d'innovation]\n")
	b.WriteString("Comparaison avec les concurrents :\n")
	b.WriteString("- [Concurrent 1] : [Présentation]\n")
	b.WriteString("  - Fonctionnalités : [Liste]\n")
	b.WriteString("  - Points forts : [Liste]\n")
	b.WriteString("  - Points faibles : [Liste]\n")
	fmt.Fprintf(&b, "  - Supériorité de %s : [Explication]\n", s)
	b.WriteString("Si aucune donnée sur les concurrents n'est disponible, indique : \n")
	b.WriteString("'Aucune donnée disponible sur les concurrents pour une comparaison.'")

	out, err := c.gen.Generate(ctx, llm.Request{
		System:      marketSystem,
		User:        b.String(),
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", eris.Wrap(err, "market study")
	}
	log.Info("market study drafted", zap.Bool("competitor_data", competitors != noCompetitorData))
	return out, nil
}
