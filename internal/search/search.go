package search

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dgallion1/docdraft/internal/llm"
)

// ErrNoResults is returned when the search produced no text.
var ErrNoResults = eris.New("search: no results")

// Searcher answers a free-text query with free text.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Client runs web searches through the OpenAI Responses API with the
// web_search_preview tool. It always uses the OpenAI credential, whatever
// generation provider is selected.
type Client struct {
	model   string
	baseURL string
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds each search request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a search client for model. The API key is resolved on each
// search so a missing key only fails the search itself.
func New(model string, log *zap.Logger, opts ...Option) *Client {
	if model == "" {
		model = llm.OpenAI.Model
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{model: model, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs query and returns the response text.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	key, err := llm.OpenAI.APIKey()
	if err != nil {
		return "", err
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	if c.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(c.timeout))
	}
	api := openai.NewClient(reqOpts...)

	start := time.Now()
	resp, err := api.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(query)},
		Tools: []responses.ToolUnionParam{
			responses.ToolParamOfWebSearchPreview(responses.WebSearchToolTypeWebSearchPreview),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "search: responses call")
	}

	text := strings.TrimSpace(resp.OutputText())
	c.log.Debug("web search",
		zap.String("query", query),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(text)),
	)
	if text == "" {
		return "", eris.Wrapf(ErrNoResults, "query %q", query)
	}
	return text, nil
}
