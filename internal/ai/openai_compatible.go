package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// GenerationConfig is the sampling configuration sent with every completion.
type GenerationConfig struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// DefaultGenerationConfig matches the sampling the KPBU assistant was tuned with.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint. The
// request is built by hand so that top_k, which the OpenAI schema lacks, still
// reaches providers that honour it.
type ChatClient struct {
	httpClient *http.Client
	cfg        ChatConfig
	breaker    *gobreaker.CircuitBreaker[string]
}

func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("chat base url, api key and model are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ChatClient{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		breaker:    newBreaker[string]("generation"),
	}, nil
}

// Generate sends prompt as a single user message and returns the completion text.
func (c *ChatClient) Generate(ctx context.Context, prompt string, gen GenerationConfig) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, []ChatMessage{{Role: "user", Content: prompt}}, gen)
	})
}

func (c *ChatClient) complete(ctx context.Context, messages []ChatMessage, gen GenerationConfig) (string, error) {
	reqBody := map[string]interface{}{
		"model":       c.cfg.Model,
		"messages":    messages,
		"stream":      false,
		"temperature": gen.Temperature,
		"top_p":       gen.TopP,
		"max_tokens":  gen.MaxOutputTokens,
	}
	if gen.TopK > 0 {
		reqBody["top_k"] = gen.TopK
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
