// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package enhancer raises candidate scores when context keywords appear in
// the token window around a match.
package enhancer

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"pii-analyzer/internal/detector"
)

// Defaults for Config
const (
	DefaultWindow              = 5
	DefaultBoost               = 0.35
	DefaultMinScoreWithContext = 0.4
)

// Config controls the context boost
type Config struct {
	// Window is the number of tokens inspected on each side of a match
	Window int `yaml:"window" json:"window"`

	// Boost is added to the score when a keyword is found
	Boost float64 `yaml:"boost" json:"boost"`

	// MinScoreWithContext is the floor applied to boosted scores
	MinScoreWithContext float64 `yaml:"min_score_with_context" json:"min_score_with_context"`
}

// DefaultConfig returns the default enhancer settings
func DefaultConfig() Config {
	return Config{
		Window:              DefaultWindow,
		Boost:               DefaultBoost,
		MinScoreWithContext: DefaultMinScoreWithContext,
	}
}

// Validate checks the configuration bounds
func (c Config) Validate() error {
	if c.Window < 0 {
		return fmt.Errorf("context window must not be negative, got %d", c.Window)
	}
	if c.Boost < 0 || c.Boost > 1 {
		return fmt.Errorf("context boost %.2f is outside [0,1]", c.Boost)
	}
	if c.MinScoreWithContext < 0 || c.MinScoreWithContext > 1 {
		return fmt.Errorf("min_score_with_context %.2f is outside [0,1]", c.MinScoreWithContext)
	}
	return nil
}

// Enhancer applies the context boost. It holds no per-request state.
type Enhancer struct {
	cfg       Config
	extractor *detector.ContextExtractor
}

// New creates an Enhancer, rejecting out-of-range settings
func New(cfg Config) (*Enhancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, detector.NewConfigurationError("context", err)
	}
	return &Enhancer{
		cfg:       cfg,
		extractor: detector.NewContextExtractor().WithWindow(cfg.Window),
	}, nil
}

// Config returns the settings the enhancer was built with
func (e *Enhancer) Config() Config {
	return e.cfg
}

// Enhance returns a copy of candidates with context-boosted scores.
// keywords is indexed by recognizer name; extra applies to every candidate.
// Order and spans are preserved.
func (e *Enhancer) Enhance(text string, candidates []detector.Candidate, keywords map[string]Keywords, extra Keywords) []detector.Candidate {
	out := make([]detector.Candidate, len(candidates))
	copy(out, candidates)
	if len(candidates) == 0 {
		return out
	}

	tokens := detector.Tokenize(text)
	fold := cases.Fold()
	for i := range out {
		c := &out[i]
		own := keywords[c.RecognizerID]
		if own.Empty() && extra.Empty() {
			continue
		}

		window := e.extractor.Window(tokens, c.Start, c.End)
		before := normalizeTokens(fold, window.Before)
		after := normalizeTokens(fold, window.After)

		word, ok := own.find(before, after)
		if !ok {
			word, ok = extra.find(before, after)
		}
		if !ok {
			continue
		}

		boosted := detector.ClampScore(max(c.Score+e.cfg.Boost, e.cfg.MinScoreWithContext))
		if c.Explanation != nil {
			explanation := *c.Explanation
			explanation.ScoreContextImprovement = boosted - c.Score
			explanation.SupportiveContextWord = word
			explanation.Score = boosted
			c.Explanation = &explanation
		}
		c.Score = boosted
	}
	return out
}

func normalizeTokens(fold cases.Caser, tokens []detector.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = normalize(fold, t.Text)
	}
	return out
}

// normalize case-folds s after NFC composition so "É" typed as E+U+0301
// and "é" compare equal
func normalize(fold cases.Caser, s string) string {
	return fold.String(norm.NFC.String(s))
}
