package groq

import (
	"fmt"
	"strings"
)

const judgeSystemPrompt = `You are the GuardianAI. Your task is to evaluate a given text based on a set of rules and guidelines provided as context. Determine if the text is 'safe' or 'not safe'.
- 'safe' means the text does not violate any of the rules.
- 'not safe' means the text violates one or more rules.
Provide a clear reason for your decision based *only* on the given context snippets.`

func buildJudgePrompt(textToEvaluate string, contexts []string) string {
	var contextBlock strings.Builder
	for i, ctx := range contexts {
		fmt.Fprintf(&contextBlock, "[Context Snippet %d]:\n%s\n\n", i+1, ctx)
	}

	return fmt.Sprintf(`Please evaluate the following text:

--- TEXT TO EVALUATE ---
'%s'

--- RULES AND GUIDELINES ---
%s
Based on these rules, is the text safe or not safe? Provide your answer in the requested JSON format.`, textToEvaluate, contextBlock.String())
}

const answerSystemPrompt = "You are a helpful RAG assistant. Answer the user using only the provided context snippets. " +
	"If the answer is not present, say you don't know. Provide citations as [source:index] based on given metadata."

func buildAnswerPrompt(question string, contexts []string) string {
	var contextBlock strings.Builder
	for i, ctx := range contexts {
		fmt.Fprintf(&contextBlock, "[chunk %d] %s\n\n", i, ctx)
	}

	return fmt.Sprintf(`User question: %s

Context snippets:
%s
Answer in the same language as the question.`, question, contextBlock.String())
}

const assistantSystemPrompt = "You are a helpful assistant in a corporate environment."
