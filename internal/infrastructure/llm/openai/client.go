package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

const (
	DefaultEmbedModel = "text-embedding-3-small"
	DefaultGenModel   = "gpt-4o-mini"
)

type Options struct {
	APIKey             string
	BaseURL            string
	EmbedModel         string
	GenModel           string
	Dimension          int
	ResilienceExecutor *resilience.Executor
}

type Client struct {
	api        *openai.Client
	embedModel string
	genModel   string
	dimension  int
	executor   *resilience.Executor
}

func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.EmbedModel == "" {
		opts.EmbedModel = DefaultEmbedModel
	}
	if opts.GenModel == "" {
		opts.GenModel = DefaultGenModel
	}
	return &Client{
		api:        openai.NewClientWithConfig(cfg),
		embedModel: opts.EmbedModel,
		genModel:   opts.GenModel,
		dimension:  opts.Dimension,
		executor:   opts.ResilienceExecutor,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp openai.EmbeddingResponse
	err := resilience.Run(ctx, e.client.executor, "openai.embed", func(ctx context.Context) error {
		var err error
		resp, err = e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(e.client.embedModel),
			Input: texts,
		})
		if err != nil {
			return fmt.Errorf("create openai embeddings: %w", err)
		}
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return nil, err
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, datum := range data {
		if e.client.dimension > 0 && len(datum.Embedding) != e.client.dimension {
			return nil, fmt.Errorf("openai embedding dimension mismatch: expected %d, got %d", e.client.dimension, len(datum.Embedding))
		}
		out[i] = datum.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// CompleteJSON runs a chat completion in JSON-object mode at temperature 0.
func (g *Generator) CompleteJSON(ctx context.Context, messages []domain.ChatMessage, maxTokens int) (string, error) {
	// go-openai drops a zero temperature from the request body.
	req := openai.ChatCompletionRequest{
		Model:          g.client.genModel,
		Temperature:    math.SmallestNonzeroFloat32,
		MaxTokens:      maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}
	req.Messages = make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var resp openai.ChatCompletionResponse
	err := resilience.Run(ctx, g.client.executor, "openai.chat", func(ctx context.Context) error {
		var err error
		resp, err = g.client.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return fmt.Errorf("create openai chat completion: %w", err)
		}
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}
	return resilience.ClassifyTransportError(err)
}

func classifyStatus(code int) resilience.ErrorClassification {
	if resilience.IsRetryableHTTPStatus(code) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}
