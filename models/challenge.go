package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// DefaultChallengeMaxScore is used when a challenge is created without one.
	DefaultChallengeMaxScore = 100.0

	// RubricWeightTolerance is the allowed deviation of the weight sum from 1.0.
	RubricWeightTolerance = 0.001
)

var (
	ErrRubricEmpty          = errors.New("rubric must contain at least one criterion")
	ErrRubricCriterionName  = errors.New("rubric criterion name must not be empty")
	ErrRubricDuplicateName  = errors.New("rubric criterion names must be unique")
	ErrRubricInvalidWeight  = errors.New("rubric criterion weight must be a positive finite number")
	ErrRubricWeightSum      = errors.New("rubric weights must sum to 1.0 within tolerance")
	ErrRubricWeightTooLarge = errors.New("rubric criterion weight must not exceed 1.0")
)

// RubricCriterion is a single named scoring criterion with a fractional weight.
type RubricCriterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
}

// Rubric is an ordered list of criteria. Order is preserved as written.
type Rubric []RubricCriterion

// Validate enforces the all-or-nothing write contract: trimmed non-empty
// unique names, positive finite weights not above 1, and a weight sum of
// 1.0 within RubricWeightTolerance. A rubric that fails any check must be
// rejected as a whole.
func (r Rubric) Validate() error {
	if len(r) == 0 {
		return ErrRubricEmpty
	}

	seen := make(map[string]struct{}, len(r))
	sum := 0.0
	for i, c := range r {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("criterion %d: %w", i, ErrRubricCriterionName)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("criterion %q: %w", name, ErrRubricDuplicateName)
		}
		seen[name] = struct{}{}

		if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) || c.Weight <= 0 {
			return fmt.Errorf("criterion %q: %w", name, ErrRubricInvalidWeight)
		}
		if c.Weight > 1.0 {
			return fmt.Errorf("criterion %q: %w", name, ErrRubricWeightTooLarge)
		}
		sum += c.Weight
	}

	if math.Abs(sum-1.0) > RubricWeightTolerance {
		return fmt.Errorf("%w (got %.4f)", ErrRubricWeightSum, sum)
	}
	return nil
}

// Clean returns a copy with criterion names trimmed.
func (r Rubric) Clean() Rubric {
	out := make(Rubric, len(r))
	for i, c := range r {
		c.Name = strings.TrimSpace(c.Name)
		out[i] = c
	}
	return out
}

// WeightSum returns the raw sum of all weights.
func (r Rubric) WeightSum() float64 {
	sum := 0.0
	for _, c := range r {
		sum += c.Weight
	}
	return sum
}

type Challenge struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	Title         string    `json:"title" db:"title"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Rubric        Rubric    `json:"rubric" db:"rubric"`
	MaxScore      float64   `json:"max_score" db:"max_score"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
