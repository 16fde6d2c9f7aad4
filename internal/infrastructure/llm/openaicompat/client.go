// Package openaicompat adapts any OpenAI-compatible inference endpoint to
// the generation, expansion, and embedding ports.
package openaicompat

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/askcampus/askcampus/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL     string
	APIKey      string
	ChatModel   string
	EmbedModel  string
	MaxTokens   int
	Temperature float32
	HTTPTimeout time.Duration
}

func (c Config) normalize() Config {
	out := c
	if out.ChatModel == "" {
		out.ChatModel = "llama-3.1-8b-instant"
	}
	if out.EmbedModel == "" {
		out.EmbedModel = "text-embedding-3-small"
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 150
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 30 * time.Second
	}
	return out
}

// chatTemperature maps the configured temperature onto the wire field. The
// client library's omitempty drops a literal zero and the server would fall
// back to its default, so greedy decoding is requested with the smallest
// nonzero value.
func (c Config) chatTemperature() float32 {
	if c.Temperature <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return c.Temperature
}

// Client implements AnswerGenerator, QueryExpander, and Embedder against one
// endpoint. All calls go through the circuit-breaker executor; a broken
// upstream sheds load instead of stacking timeouts.
type Client struct {
	cfg  Config
	api  *openai.Client
	exec *resilience.Executor
}

func NewClient(cfg Config, exec *resilience.Executor) (*Client, error) {
	cfg = cfg.normalize()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("openaicompat: base URL is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}

	return &Client{
		cfg:  cfg,
		api:  openai.NewClientWithConfig(apiCfg),
		exec: exec,
	}, nil
}

// Circuit breaker operation names, one breaker per model call type.
const (
	OperationGenerate = "llm.generate"
	OperationExpand   = "llm.expand"
	OperationEmbed    = "llm.embed"
)

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := c.exec.Execute(ctx, OperationGenerate, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.cfg.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: c.cfg.chatTemperature(),
			MaxTokens:   c.cfg.MaxTokens,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}
		out = resp.Choices[0].Message.Content
		return nil
	}, classifyAPIError)
	if err != nil {
		return "", wrapUnavailable("generate answer", err)
	}
	return out, nil
}

const expandInstruction = "Rewrite the following admissions question as a single search query. " +
	"Add likely synonyms and the expanded forms of program abbreviations. " +
	"Return only the rewritten query, nothing else.\n\nQuestion: %s"

func (c *Client) Expand(ctx context.Context, query string) (string, error) {
	var out string
	err := c.exec.Execute(ctx, OperationExpand, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.cfg.ChatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(expandInstruction, query)},
			},
			Temperature: c.cfg.chatTemperature(),
			MaxTokens:   80,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("expansion returned no choices")
		}
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}, classifyAPIError)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out [][]float32
	err := c.exec.Execute(ctx, OperationEmbed, func(ctx context.Context) error {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.cfg.EmbedModel),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
		}
		out = make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			out[i] = d.Embedding
		}
		return nil
	}, classifyAPIError)
	if err != nil {
		return nil, wrapUnavailable("embed texts", err)
	}
	return out, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) Model() string {
	return c.cfg.EmbedModel
}
