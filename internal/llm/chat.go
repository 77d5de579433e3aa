package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/prompt"
)

var chatDefaults = map[ProviderType]struct {
	baseURL string
	model   string
}{
	ProviderGroq:       {"https://api.groq.com/openai/v1", "llama-3.3-70b-versatile"},
	ProviderOpenRouter: {"https://openrouter.ai/api/v1", "meta-llama/llama-3.2-3b-instruct:free"},
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint
// (Groq, OpenRouter).
type ChatClient struct {
	provider   ProviderType
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// ChatConfig for an OpenAI-compatible client
type ChatConfig struct {
	Provider   ProviderType
	APIKey     string
	ModelName  string
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewChatClient creates a new OpenAI-compatible client
func NewChatClient(cfg ChatConfig, logger *zap.Logger) (*ChatClient, error) {
	defaults, ok := chatDefaults[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported chat provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaults.model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.baseURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger.Info("Chat client initialized",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &ChatClient{
		provider:   cfg.Provider,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		httpClient: cfg.HTTPClient,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Close is a no-op; the HTTP client holds no resources of its own
func (c *ChatClient) Close() error {
	return nil
}

// Draft asks the model for the three sentences of a triplet
func (c *ChatClient) Draft(ctx context.Context, t models.Triplet) (*models.Drafts, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.modelName,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: prompt.Build(t)},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying chat request",
				zap.String("provider", string(c.provider)),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		content, err := c.complete(ctx, reqBody)
		if err != nil {
			lastErr = err
			c.logger.Error("Chat API error",
				zap.String("provider", string(c.provider)),
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		drafts, err := prompt.ParseDrafts(content)
		if err != nil {
			lastErr = err
			c.logger.Error("Failed to parse drafts",
				zap.Error(err),
				zap.String("original_response", content),
				zap.Int("attempt", attempt+1))
			continue
		}

		c.logger.Debug("Drafts generated",
			zap.String("provider", string(c.provider)),
			zap.String("triplet_id", t.ID),
			zap.Int("attempt", attempt+1))
		return drafts, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *ChatClient) complete(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.provider == ProviderOpenRouter {
		req.Header.Set("X-Title", "Bias Annotation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API returned status %d: %s", c.provider, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.provider, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.provider)
	}
	return parsed.Choices[0].Message.Content, nil
}

// GetModelInfo returns model information
func (c *ChatClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    string(c.provider),
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
