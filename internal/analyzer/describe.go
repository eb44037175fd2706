// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/recognizers/ner"
	"pii-analyzer/internal/recognizers/pattern"
	"pii-analyzer/internal/resilience"
)

// RecognizerInfo describes one registered recognizer
type RecognizerInfo struct {
	Name       string        `json:"name" yaml:"name"`
	Language   string        `json:"language" yaml:"language"`
	Entities   []string      `json:"entities" yaml:"entities"`
	Context    []string      `json:"context,omitempty" yaml:"context,omitempty"`
	Patterns   []PatternInfo `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Validation string        `json:"validation,omitempty" yaml:"validation,omitempty"`
	Remote     bool          `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// PatternInfo describes one pattern of a pattern recognizer
type PatternInfo struct {
	Name  string  `json:"name" yaml:"name"`
	Regex string  `json:"regex" yaml:"regex"`
	Score float64 `json:"score" yaml:"score"`
}

// Describe returns the recognizers for language in registration order
func (e *Engine) Describe(language string) ([]RecognizerInfo, error) {
	language = e.language(language)
	entries, err := e.registry.Recognizers(language)
	if err != nil {
		return nil, err
	}

	infos := make([]RecognizerInfo, 0, len(entries))
	for _, entry := range entries {
		r := entry.Recognizer
		info := RecognizerInfo{
			Name:     r.Name(),
			Language: language,
			Entities: r.Entities(),
		}
		if aware, ok := r.(detector.ContextAware); ok {
			info.Context = aware.ContextKeywords()
		}
		switch typed := r.(type) {
		case *pattern.Recognizer:
			for _, p := range typed.Patterns() {
				info.Patterns = append(info.Patterns, PatternInfo{Name: p.Name(), Regex: p.Source(), Score: p.Score()})
			}
			info.Validation = string(typed.Validation())
		case *ner.Recognizer:
			info.Remote = true
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Sidecar reports the NER sidecar circuit breaker, or nil when NER is not
// configured
func (e *Engine) Sidecar() *resilience.Snapshot {
	if e.sidecar == nil {
		return nil
	}
	snap := e.sidecar.Breaker()
	return &snap
}
