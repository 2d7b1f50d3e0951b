package groq

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Generator synthesizes answers restricted to retrieved contexts. The
// extractive fallback for a failed or absent LLM lives in the query use case,
// not here.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, contexts []string) (string, error) {
	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnswerPrompt(question, contexts)},
		},
		Temperature: 0.2,
	}

	answer, err := g.client.complete(ctx, "groq.generate", req)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// Assistant is the primary corporate LLM whose output the guardian screens.
type Assistant struct {
	client *Client
}

func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

func (a *Assistant) Respond(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	}

	response, err := a.client.complete(ctx, "groq.assistant", req)
	if err != nil {
		return "", fmt.Errorf("assistant response: %w", err)
	}
	return response, nil
}
