package llm

import (
	"context"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/siteforge-io/design-engine/pkg/models"
)

// AnthropicInvoker drives providers whose vendor is "anthropic".
type AnthropicInvoker struct {
	client *anthropic.Client
	logger *zap.Logger
}

// NewAnthropicInvoker creates an invoker for the Anthropic Messages API.
func NewAnthropicInvoker(apiKey string, logger *zap.Logger) *AnthropicInvoker {
	return &AnthropicInvoker{
		client: anthropic.NewClient(apiKey),
		logger: logger.Named("anthropic"),
	}
}

// Invoke executes one prompt against the provider's configured model.
func (c *AnthropicInvoker) Invoke(ctx context.Context, provider *models.LLMProvider, prompt string) (*InvocationResult, error) {
	c.logger.Debug("provider request",
		zap.String("provider", provider.Name),
		zap.String("model", provider.Model),
		zap.Int("prompt_len", len(prompt)))

	maxTokens := provider.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(provider.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		c.logger.Error("provider request failed",
			zap.String("provider", provider.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Provider = provider.Name
		return nil, classified
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			content = *block.Text
			break
		}
	}

	c.logger.Info("provider request completed",
		zap.String("provider", provider.Name),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &InvocationResult{
		Content:    content,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// Ensure AnthropicInvoker implements ProviderInvoker at compile time.
var _ ProviderInvoker = (*AnthropicInvoker)(nil)
