// Package llm holds the automated-scoring model clients. A Scorer rates
// one submission prompt against a challenge rubric and returns raw
// per-criterion scores; weighting happens in the scoring package.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/promptarena/prompt-arena/models"
)

var (
	ErrEmptyAPIKey      = errors.New("model API key must not be empty")
	ErrNoResponseChoice = errors.New("model returned no response choices")
	ErrUnparsableScores = errors.New("model response did not contain a parsable score object")
)

// Scorer rates a submission prompt against a rubric. Implementations
// return a score in [0,100] for every rubric criterion, keyed by the
// criterion name.
type Scorer interface {
	// ModelName identifies the model; it keys the submission's ModelScores map.
	ModelName() string

	ScorePrompt(ctx context.Context, challenge *models.Challenge, promptText string) (map[string]float64, error)
}

// buildScoringPrompt renders the instruction given to the model. The model
// must answer with a bare JSON object mapping criterion names to numbers.
func buildScoringPrompt(challenge *models.Challenge, promptText string) string {
	var b strings.Builder
	b.WriteString("You are scoring a prompt-engineering competition submission.\n")
	b.WriteString("Challenge: ")
	b.WriteString(challenge.Title)
	b.WriteString("\n")
	if challenge.Description != nil && *challenge.Description != "" {
		b.WriteString("Challenge description: ")
		b.WriteString(*challenge.Description)
		b.WriteString("\n")
	}
	b.WriteString("\nRate the submission below on each criterion from 0 to 100:\n")
	for _, c := range challenge.Rubric {
		fmt.Fprintf(&b, "- %s", c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, ": %s", c.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with ONLY a JSON object mapping each criterion name to its numeric score, no prose.\n")
	b.WriteString("\n--- SUBMISSION ---\n")
	b.WriteString(promptText)
	return b.String()
}

// parseScores extracts the criterion->score object from model output.
// Models wrap JSON in code fences or prose often enough that we cut out
// the outermost brace pair before unmarshalling. Scores are clamped to
// [0,100]; criteria the model skipped are absent from the result (the
// aggregator treats them as 0).
func parseScores(raw string, rubric models.Rubric) (map[string]float64, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: %q", ErrUnparsableScores, truncate(raw, 200))
	}

	parsed := make(map[string]float64)
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableScores, err)
	}

	scores := make(map[string]float64, len(rubric))
	for _, c := range rubric {
		v, ok := parsed[c.Name]
		if !ok {
			continue
		}
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		scores[c.Name] = v
	}
	return scores, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
