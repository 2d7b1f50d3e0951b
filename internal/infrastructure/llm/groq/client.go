package groq

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/guardianai/guardianai/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Client wraps the Groq chat-completion API. Groq speaks the OpenAI wire
// protocol, so the go-openai client is pointed at the Groq base URL.
type Client struct {
	api      *openai.Client
	model    string
	executor *resilience.Executor
}

func New(apiKey, baseURL, model string, executor *resilience.Executor) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		model:    model,
		executor: executor,
	}
}

func (c *Client) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	req.Model = c.model

	var content string
	call := func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errNoChoices
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyGroqError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}
