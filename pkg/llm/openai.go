package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// OpenAIConfig holds configuration for the OpenAI-compatible invoker.
type OpenAIConfig struct {
	BaseURL        string // e.g., "https://api.openai.com/v1"
	APIKey         string // Optional for local endpoints
	EmbeddingModel string // e.g., "text-embedding-3-small"
}

// OpenAIInvoker drives providers whose vendor is "openai" through any
// OpenAI-compatible chat completion endpoint.
type OpenAIInvoker struct {
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAIInvoker creates an invoker for OpenAI-compatible endpoints.
func NewOpenAIInvoker(cfg *OpenAIConfig, logger *zap.Logger) (*OpenAIInvoker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAIInvoker{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger.Named("openai"),
	}, nil
}

// Invoke executes one prompt against the provider's configured model.
func (c *OpenAIInvoker) Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error) {
	c.logger.Debug("provider request",
		zap.String("provider", provider.Name),
		zap.String("model", provider.Model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model: provider.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if provider.MaxTokens > 0 {
		req.MaxTokens = provider.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("provider request failed",
			zap.String("provider", provider.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Provider = provider.Name
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeUnknown, "no choices in response", false, nil)
	}

	c.logger.Info("provider request completed",
		zap.String("provider", provider.Name),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &InvocationResult{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// OpenAIEmbedder generates embeddings via an OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates a network-backed embedder.
func NewOpenAIEmbedder(cfg *OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	model := cfg.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Embed generates an embedding vector for the input text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, input string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{input},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return resp.Data[0].Embedding, nil
}

// Ensure implementations satisfy their interfaces at compile time.
var (
	_ ProviderInvoker = (*OpenAIInvoker)(nil)
	_ Embedder        = (*OpenAIEmbedder)(nil)
)
