package llm

import (
	"strings"
	"testing"

	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRubric() models.Rubric {
	return models.Rubric{
		{Name: "clarity", Weight: 0.5},
		{Name: "creativity", Weight: 0.5},
	}
}

func TestParseScores_PlainJSON(t *testing.T) {
	scores, err := parseScores(`{"clarity": 80, "creativity": 65.5}`, testRubric())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"clarity": 80, "creativity": 65.5}, scores)
}

func TestParseScores_CodeFencedJSON(t *testing.T) {
	raw := "Here you go:\n```json\n{\"clarity\": 70, \"creativity\": 90}\n```\nHope that helps."
	scores, err := parseScores(raw, testRubric())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"clarity": 70, "creativity": 90}, scores)
}

func TestParseScores_ClampsRange(t *testing.T) {
	scores, err := parseScores(`{"clarity": 150, "creativity": -20}`, testRubric())
	require.NoError(t, err)
	assert.Equal(t, 100.0, scores["clarity"])
	assert.Equal(t, 0.0, scores["creativity"])
}

func TestParseScores_SkippedCriterionAbsent(t *testing.T) {
	scores, err := parseScores(`{"clarity": 55}`, testRubric())
	require.NoError(t, err)
	_, ok := scores["creativity"]
	assert.False(t, ok)
}

func TestParseScores_UnknownKeysDropped(t *testing.T) {
	scores, err := parseScores(`{"clarity": 55, "vibes": 99}`, testRubric())
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestParseScores_NoJSONObject(t *testing.T) {
	_, err := parseScores("I cannot score this submission.", testRubric())
	assert.ErrorIs(t, err, ErrUnparsableScores)
}

func TestParseScores_MalformedJSON(t *testing.T) {
	_, err := parseScores(`{"clarity": }`, testRubric())
	assert.ErrorIs(t, err, ErrUnparsableScores)
}

func TestBuildScoringPrompt(t *testing.T) {
	desc := "Write a prompt that extracts dates."
	challenge := &models.Challenge{
		Title:       "Date extraction",
		Description: &desc,
		Rubric: models.Rubric{
			{Name: "clarity", Description: "is it readable", Weight: 0.5},
			{Name: "creativity", Weight: 0.5},
		},
	}

	prompt := buildScoringPrompt(challenge, "my submission text")

	assert.True(t, strings.Contains(prompt, "Date extraction"))
	assert.True(t, strings.Contains(prompt, "- clarity: is it readable"))
	assert.True(t, strings.Contains(prompt, "- creativity"))
	assert.True(t, strings.Contains(prompt, "my submission text"))
}
