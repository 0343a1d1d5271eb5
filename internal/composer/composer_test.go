package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
	llmmocks "github.com/dgallion1/docdraft/internal/llm/mocks"
	searchmocks "github.com/dgallion1/docdraft/internal/search/mocks"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		section Section
		in      Inputs
		field   string
	}{
		{General, Inputs{Content: "x"}, FieldExample},
		{Context, Inputs{Content: "x"}, FieldSynthesis},
		{Market, Inputs{Synthesis: "s"}, FieldSolution},
		{Innovation, Inputs{SolutionName: "  "}, FieldSolution},
		{Company, Inputs{SolutionName: "s"}, FieldCompany},
		{Activities, Inputs{SolutionName: "s"}, FieldSynthesis},
	}
	for _, tt := range tests {
		t.Run(string(tt.section), func(t *testing.T) {
			err := Validate(tt.section, tt.in)
			var mi *MissingInputError
			require.True(t, errors.As(err, &mi))
			assert.Equal(t, tt.field, mi.Field)
			assert.Contains(t, err.Error(), string(tt.section))
		})
	}

	assert.NoError(t, Validate(Conclusion, Inputs{}))
	assert.NoError(t, Validate(General, Inputs{Example: "ex"}))
	assert.NoError(t, Validate(Company, Inputs{CompanyName: "Acme"}))
}

func TestValidateUnknownSection(t *testing.T) {
	err := Validate("1.4", Inputs{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownSection))
	assert.Contains(t, err.Error(), "1.4")
}

func TestSectionsAndTitlesAgree(t *testing.T) {
	for _, s := range Sections {
		assert.NotEmpty(t, Titles[s], string(s))
		_, ok := required[s]
		assert.True(t, ok, string(s))
	}
}

func TestSectionMissingInputMakesNoCall(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	c := New(gen, nil, zap.NewNop())

	_, err := c.Section(context.Background(), Market, Inputs{})
	require.Error(t, err)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSectionPrompt(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.System == sectionSystem &&
			r.MaxTokens == 1500 && r.Temperature == 0.7 &&
			strings.Contains(r.User, "Rédigez la section 1.2 d'un rapport.") &&
			strings.Contains(r.User, "Adaptez le style, la structure et le ton de l'exemple suivant : \nEXEMPLE") &&
			strings.Contains(r.User, "inférieure à Citykomi") &&
			strings.Contains(r.User, "COMPETITORS") &&
			strings.HasSuffix(r.User, returnOnlyText)
	})).Return("Étude de marché rédigée.", nil).Once()

	c := New(gen, nil, zap.NewNop())
	out, err := c.Section(context.Background(), Market, Inputs{
		Content:      "COMPETITORS",
		SolutionName: "Citykomi",
		Example:      "EXEMPLE",
	})
	require.NoError(t, err)
	assert.Equal(t, "Étude de marché rédigée.", out)
}

func TestGeneralSectionOmitsSectionNumber(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return !strings.Contains(r.User, "Rédigez la section") &&
			strings.Contains(r.User, "Voici le contenu à rédiger : \nNOTES")
	})).Return("ok", nil).Once()

	c := New(gen, nil, zap.NewNop())
	_, err := c.Section(context.Background(), General, Inputs{Content: "NOTES", Example: "style"})
	require.NoError(t, err)
}

func TestCompanySectionUsesSearch(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)

	s.On("Search", mock.Anything, "presentation of the company Acme including history, values, projects, and solutions").
		Return("Acme, fondée en 1990.", nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return strings.Contains(r.User, "Voici les informations récupérées sur le web : \nAcme, fondée en 1990.")
	})).Return("Présentation.", nil).Once()

	c := New(gen, s, zap.NewNop())
	out, err := c.Section(context.Background(), Company, Inputs{CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Présentation.", out)
}

func TestCompanySectionSearchFailureDegrades(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)

	s.On("Search", mock.Anything, mock.Anything).Return("", errors.New("search down")).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return strings.Contains(r.User, noCompanyData)
	})).Return("Présentation.", nil).Once()

	c := New(gen, s, zap.NewNop())
	_, err := c.Section(context.Background(), Company, Inputs{CompanyName: "Acme"})
	assert.NoError(t, err)
}

func TestSectionGenerationError(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

	c := New(gen, nil, zap.NewNop())
	_, err := c.Section(context.Background(), Conclusion, Inputs{Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestInnovation(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)

	s.On("Search", mock.Anything, "fonctionnalités et caractéristiques de la solution de Ekonsilio sur www.ekonsilio.com").
		Return("SITE INFO", nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.System == innovationSystem && r.MaxTokens == 1500 &&
			strings.HasPrefix(r.User, "Voici une synthèse de la solution Ekonsilio Chat de l'entreprise Ekonsilio : \nSYNTH") &&
			strings.Contains(r.User, "SITE INFO")
	})).Return("Élément différenciant et innovant : ...", nil).Once()

	c := New(gen, s, zap.NewNop())
	out, err := c.Innovation(context.Background(), InnovationInputs{
		Synthesis:    "SYNTH",
		SolutionName: "Ekonsilio Chat",
		CompanyName:  "Ekonsilio",
		WebsiteURL:   "www.ekonsilio.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Élément différenciant et innovant : ...", out)
}

func TestInnovationSearchFailureOmitsWebsite(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)

	s.On("Search", mock.Anything, mock.Anything).Return("", errors.New("no key")).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return !strings.Contains(r.User, "recueillies sur le site web")
	})).Return("analyse", nil).Once()

	c := New(gen, s, zap.NewNop())
	_, err := c.Innovation(context.Background(), InnovationInputs{
		Synthesis: "s", SolutionName: "sol", CompanyName: "co", WebsiteURL: "example.com",
	})
	assert.NoError(t, err)
}

func TestInnovationWithoutWebsiteSkipsSearch(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return("analyse", nil).Once()

	c := New(gen, s, zap.NewNop())
	_, err := c.Innovation(context.Background(), InnovationInputs{Synthesis: "s", SolutionName: "sol", CompanyName: "co"})
	require.NoError(t, err)
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestInnovationRequiresCompany(t *testing.T) {
	c := New(llmmocks.NewMockGenerator(t), nil, zap.NewNop())
	_, err := c.Innovation(context.Background(), InnovationInputs{Synthesis: "s", SolutionName: "sol"})

	var mi *MissingInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, FieldCompany, mi.Field)
}

func TestMarket(t *testing.T) {
	gen := llmmocks.NewMockGenerator(t)
	s := searchmocks.NewMockSearcher(t)

	s.On("Search", mock.Anything, mock.MatchedBy(func(q string) bool {
		return strings.Contains(q, "Cherche 4 solutions similaires à Citykomi")
	})).Return("", errors.New("timeout")).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.System == marketSystem && r.MaxTokens == 2000 && r.Temperature == 0.7 &&
			strings.Contains(r.User, "Les données sur les concurrents sont : \n"+noCompetitorData) &&
			strings.Contains(r.User, "L'analyse de l'innovation donne ceci : \nINNOV")
	})).Return("Confirmation de l'innovation : ...", nil).Once()

	c := New(gen, s, zap.NewNop())
	out, err := c.Market(context.Background(), MarketInputs{
		Synthesis:          "s",
		InnovationAnalysis: "INNOV",
		SolutionName:       "Citykomi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Confirmation de l'innovation : ...", out)
}

func TestMarketRequiresSolution(t *testing.T) {
	c := New(llmmocks.NewMockGenerator(t), nil, zap.NewNop())
	_, err := c.Market(context.Background(), MarketInputs{Synthesis: "s"})

	var mi *MissingInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, FieldSolution, mi.Field)
}
