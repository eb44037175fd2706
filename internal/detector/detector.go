// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"context"
)

// Recognizer is the single capability shared by every detection strategy:
// given text and a language, propose candidate entity spans.
type Recognizer interface {
	// Name returns the recognizer identifier reported in results
	Name() string

	// Entities returns the entity types this recognizer can emit
	Entities() []string

	// Analyze scans text and returns candidates with byte offsets into text
	Analyze(ctx context.Context, text, language string) ([]Candidate, error)
}

// ContextAware is implemented by recognizers that carry context keywords
// used by the enhancer to raise candidate scores.
type ContextAware interface {
	ContextKeywords() []string
}

// Candidate represents an unconfirmed detected entity occurrence
type Candidate struct {
	EntityType string
	Start      int // inclusive byte offset
	End        int // exclusive byte offset
	Score      float64

	// Recognizer that produced the candidate
	RecognizerID string

	// Rank is the registration position of the recognizer for the request
	// language. Lower ranks win equal-score overlaps.
	Rank int

	Explanation *Explanation
}

// Explanation records how a candidate's score was reached
type Explanation struct {
	Recognizer              string  `json:"recognizer" yaml:"recognizer"`
	PatternName             string  `json:"pattern_name,omitempty" yaml:"pattern_name,omitempty"`
	Pattern                 string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	OriginalScore           float64 `json:"original_score" yaml:"original_score"`
	Score                   float64 `json:"score" yaml:"score"`
	ScoreContextImprovement float64 `json:"score_context_improvement" yaml:"score_context_improvement"`
	SupportiveContextWord   string  `json:"supportive_context_word,omitempty" yaml:"supportive_context_word,omitempty"`
	ValidationResult        *bool   `json:"validation_result,omitempty" yaml:"validation_result,omitempty"`
	TextualExplanation      string  `json:"textual_explanation,omitempty" yaml:"textual_explanation,omitempty"`
}

// Len returns the span length in bytes
func (c Candidate) Len() int {
	return c.End - c.Start
}

// Overlaps reports whether two half-open spans intersect
func (c Candidate) Overlaps(other Candidate) bool {
	return c.Start < other.End && other.Start < c.End
}

// Text returns the matched substring of text, or "" when the span is out of range
func (c Candidate) Text(text string) string {
	if c.Start < 0 || c.End > len(text) || c.Start >= c.End {
		return ""
	}
	return text[c.Start:c.End]
}

// ClampScore bounds a score to [0, 1]
func ClampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
