package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/guardianai/guardianai/internal/core/domain"
)

// safetyEvaluationSchema constrains the model to the two-value verdict shape.
var safetyEvaluationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"safety_level": {
			"type": "string",
			"enum": ["safe", "not safe"],
			"description": "Whether the text is safe based on the given context."
		},
		"reason": {
			"type": "string",
			"description": "A brief explanation for the safety evaluation decision."
		}
	},
	"required": ["safety_level", "reason"],
	"additionalProperties": false
}`)

// Judge is the structured-output safety evaluation capability. Any failure
// (upstream error, malformed JSON, schema violation) is returned as an
// ErrEvaluation; the caller decides to fall back to the conservative verdict.
type Judge struct {
	client *Client
}

func NewJudge(client *Client) *Judge {
	return &Judge{client: client}
}

func (j *Judge) Judge(ctx context.Context, text string, contexts []string) (domain.SafetyEvaluation, error) {
	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildJudgePrompt(text, contexts)},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "safety_evaluation",
				Schema: safetyEvaluationSchema,
			},
		},
	}

	content, err := j.client.complete(ctx, "groq.judge", req)
	if err != nil {
		return domain.SafetyEvaluation{}, domain.WrapError(domain.ErrEvaluation, "judge", err)
	}

	var evaluation domain.SafetyEvaluation
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &evaluation); err != nil {
		return domain.SafetyEvaluation{}, domain.WrapError(domain.ErrEvaluation, "judge", fmt.Errorf("parse verdict json: %w", err))
	}
	if err := evaluation.Validate(); err != nil {
		return domain.SafetyEvaluation{}, err
	}
	return evaluation, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
