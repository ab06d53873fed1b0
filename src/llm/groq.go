package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com"
	DefaultGroqModel   = "meta-llama/llama-4-scout-17b-16e-instruct"
)

type groqClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// OpenAI-compatible chat completion structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"` // Can be string or number
	} `json:"error,omitempty"`
}

func newGroq(cfg Config, httpClient *http.Client) *groqClient {
	c := &groqClient{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultGroqBaseURL
	}
	if c.model == "" {
		c.model = DefaultGroqModel
	}
	return c
}

func (c *groqClient) Name() string { return ProviderGroq }

func (c *groqClient) Complete(ctx context.Context, req Request) (string, error) {
	req = req.withDefaults()

	content := []chatContent{{Type: "text", Text: req.Prompt}}
	if len(req.Image) > 0 {
		content = append(content, chatContent{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.Image)},
		})
	}

	body, err := sonic.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/openai/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chat chatResponse
	decodeErr := sonic.Unmarshal(raw, &chat)

	if resp.StatusCode != http.StatusOK {
		detail := string(raw)
		if decodeErr == nil && chat.Error != nil {
			detail = fmt.Sprintf("%s (type: %s, code: %v)", chat.Error.Message, chat.Error.Type, chat.Error.Code)
		}
		return "", &StatusError{Provider: ProviderGroq, StatusCode: resp.StatusCode, Message: detail}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("groq error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}
	return chat.Choices[0].Message.Content, nil
}

// Ping checks the key against the models listing.
func (c *groqClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/openai/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("groq: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return doPing(c.http, req, ProviderGroq)
}
