package llm

import (
	"context"
	"fmt"

	"github.com/promptarena/prompt-arena/models"
	openai "github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "gpt-4o-mini"

type openAIScorer struct {
	client *openai.Client
	model  string
}

// NewOpenAIScorer builds a Scorer backed by the OpenAI chat completion API.
func NewOpenAIScorer(apiKey, model string) (Scorer, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if model == "" {
		model = openAIDefaultModel
	}
	return &openAIScorer{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (s *openAIScorer) ModelName() string {
	return s.model
}

func (s *openAIScorer) ScorePrompt(ctx context.Context, challenge *models.Challenge, promptText string) (map[string]float64, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a strict, consistent competition grader. Output only JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScoringPrompt(challenge, promptText),
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoResponseChoice
	}

	return parseScores(resp.Choices[0].Message.Content, challenge.Rubric)
}
