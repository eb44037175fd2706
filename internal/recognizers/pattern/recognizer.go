// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pii-analyzer/internal/detector"
)

// DefaultDenyListScore is the score given to deny-list matches when the
// definition does not set one
const DefaultDenyListScore = 1.0

// Definition is the declarative description of a pattern recognizer
type Definition struct {
	Name          string     `yaml:"name" json:"name"`
	EntityType    string     `yaml:"entity_name" json:"entity_name"`
	Language      string     `yaml:"supported_language" json:"supported_language"`
	Patterns      []Spec     `yaml:"patterns" json:"patterns"`
	Context       []string   `yaml:"context,omitempty" json:"context,omitempty"`
	DenyList      []string   `yaml:"deny_list,omitempty" json:"deny_list,omitempty"`
	DenyListScore *float64   `yaml:"deny_list_score,omitempty" json:"deny_list_score,omitempty"`
	Validation    Validation `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// Validate checks the fields every recognizer needs
func (d Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.EntityType) == "" {
		errs = append(errs, errors.New("entity_name is required"))
	}
	if strings.TrimSpace(d.Language) == "" {
		errs = append(errs, errors.New("supported_language is required"))
	}
	if len(d.Patterns) == 0 && len(nonEmpty(d.DenyList)) == 0 {
		errs = append(errs, errors.New("at least one pattern or deny_list term is required"))
	}
	if d.DenyListScore != nil && (*d.DenyListScore < 0 || *d.DenyListScore > 1) {
		errs = append(errs, fmt.Errorf("deny_list_score %.2f is outside [0,1]", *d.DenyListScore))
	}
	return errors.Join(errs...)
}

// ID returns the recognizer name, deriving one from the entity type when unset
func (d Definition) ID() string {
	if d.Name != "" {
		return d.Name
	}
	return d.EntityType + "Recognizer"
}

// Recognizer detects one entity type in one language with regular expressions
type Recognizer struct {
	name       string
	entityType string
	language   string
	patterns   []*Pattern
	context    []string
	validate   func(string) bool
	validation Validation
}

// New compiles def into a Recognizer. Any failure is a configuration error.
func New(def Definition) (*Recognizer, error) {
	if err := def.Validate(); err != nil {
		return nil, detector.NewConfigurationError("recognizer "+def.ID(), err)
	}

	validate, err := def.Validation.checker()
	if err != nil {
		return nil, detector.NewConfigurationError("recognizer "+def.ID(), err)
	}

	specs := append([]Spec(nil), def.Patterns...)
	if terms := nonEmpty(def.DenyList); len(terms) > 0 {
		score := DefaultDenyListScore
		if def.DenyListScore != nil {
			score = *def.DenyListScore
		}
		specs = append(specs, denyListSpec(terms, score))
	}

	r := &Recognizer{
		name:       def.ID(),
		entityType: def.EntityType,
		language:   def.Language,
		context:    nonEmpty(def.Context),
		validate:   validate,
		validation: def.Validation,
	}
	for _, spec := range specs {
		p, err := Compile(spec)
		if err != nil {
			return nil, detector.NewConfigurationError("recognizer "+def.ID(), err)
		}
		r.patterns = append(r.patterns, p)
	}
	return r, nil
}

// Name implements detector.Recognizer
func (r *Recognizer) Name() string {
	return r.name
}

// Entities implements detector.Recognizer
func (r *Recognizer) Entities() []string {
	return []string{r.entityType}
}

// Language returns the only language this recognizer matches
func (r *Recognizer) Language() string {
	return r.language
}

// ContextKeywords implements detector.ContextAware
func (r *Recognizer) ContextKeywords() []string {
	return r.context
}

// Patterns returns the compiled patterns in declaration order
func (r *Recognizer) Patterns() []*Pattern {
	return r.patterns
}

// Validation returns the checksum applied to matches, empty when none
func (r *Recognizer) Validation() Validation {
	return r.validation
}

// Analyze implements detector.Recognizer. Each pattern is scanned on its
// own, so matches of different patterns may overlap.
func (r *Recognizer) Analyze(ctx context.Context, text, language string) ([]detector.Candidate, error) {
	if language != r.language {
		return nil, nil
	}

	var candidates []detector.Candidate
	for _, p := range r.patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, span := range p.FindAll(text) {
			start, end := span[0], span[1]
			if start >= end {
				continue
			}

			explanation := &detector.Explanation{
				Recognizer:         r.name,
				PatternName:        p.Name(),
				Pattern:            p.Source(),
				OriginalScore:      p.Score(),
				Score:              p.Score(),
				TextualExplanation: fmt.Sprintf("Detected by %s using pattern %s", r.name, p.Name()),
			}

			if r.validate != nil {
				valid := r.validate(text[start:end])
				explanation.ValidationResult = &valid
				if !valid {
					continue
				}
			}

			candidates = append(candidates, detector.Candidate{
				EntityType:   r.entityType,
				Start:        start,
				End:          end,
				Score:        p.Score(),
				RecognizerID: r.name,
				Explanation:  explanation,
			})
		}
	}
	return candidates, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
