package chat

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the GitHub Models inference endpoint, which
	// speaks the OpenAI wire format.
	DefaultBaseURL = "https://models.inference.ai.azure.com"

	// DefaultModel balances latency and quality for a chat loop.
	DefaultModel = "gpt-4o-mini"

	defaultTemperature = 0.7
	defaultMaxTokens   = 1000

	systemPrompt = "You are a helpful voice assistant. Keep replies short and conversational; they will be read aloud."
)

// Config holds completion client configuration.
type Config struct {
	// APIKey is the bearer token. Empty means demo mode: canned replies,
	// no network.
	APIKey string

	// BaseURL overrides the endpoint, mainly for tests.
	BaseURL string

	// Model overrides the default model.
	Model string
}

// Client produces assistant replies for a conversation.
type Client struct {
	api   *openai.Client
	model string
	demo  bool
}

// NewClient builds a completion client from config.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	cc := openai.DefaultConfig(config.APIKey)
	cc.BaseURL = config.BaseURL

	return &Client{
		api:   openai.NewClientWithConfig(cc),
		model: config.Model,
		demo:  config.APIKey == "",
	}
}

// Demo reports whether the client answers from canned responses.
func (c *Client) Demo() bool {
	return c.demo
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete produces a reply to the conversation window. In demo mode the
// reply comes from the canned keyword table instead of the API.
func (c *Client) Complete(ctx context.Context, window []Message) (string, error) {
	if len(window) == 0 {
		return "", fmt.Errorf("cannot complete an empty conversation")
	}

	if c.demo {
		return demoReply(window[len(window)-1].Content), nil
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(window)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range window {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
