package llm

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Request is one chat-style generation call.
type Request struct {
	System      string // Optional system message
	User        string
	MaxTokens   int
	Temperature float64
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Client calls a chat completions endpoint. Calls are paced, never retried.
type Client struct {
	api      *openai.Client
	provider Provider
	limiter  *rate.Limiter
	stats    *Stats
	log      *zap.Logger

	baseURL string
	timeout time.Duration
	rps     float64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider's base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit paces calls to rps requests per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.rps = rps }
}

// WithStats records call latencies into s.
func WithStats(s *Stats) Option {
	return func(c *Client) { c.stats = s }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for p. It fails with *MissingKeyError before any
// network traffic when the provider's key is not set.
func New(p Provider, opts ...Option) (*Client, error) {
	key, err := p.APIKey()
	if err != nil {
		return nil, err
	}

	c := &Client{provider: p, baseURL: p.BaseURL, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
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
	c.api = &api

	if c.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)
	}
	c.log = c.log.With(zap.String("provider", p.Name), zap.String("model", p.Model))
	return c, nil
}

// Generate sends one chat completion and returns the trimmed text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "llm: rate limit wait")
		}
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.provider.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)
	if c.stats != nil {
		c.stats.Record(elapsed, err)
	}
	if err != nil {
		c.log.Debug("chat completion failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", eris.Wrapf(err, "llm: %s chat completion", c.provider.Name)
	}
	if len(resp.Choices) == 0 {
		return "", eris.Errorf("llm: %s returned no choices", c.provider.Name)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Debug("chat completion",
		zap.Duration("elapsed", elapsed),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("chars", len(text)),
	)
	return text, nil
}
