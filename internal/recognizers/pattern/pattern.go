// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Spec is the declarative form of a pattern as written in configuration
type Spec struct {
	Name  string  `yaml:"name" json:"name"`
	Regex string  `yaml:"regex" json:"regex"`
	Score float64 `yaml:"score" json:"score"`
}

// Pattern is a compiled regular expression with its base confidence score.
// It is immutable once compiled and safe for concurrent use.
type Pattern struct {
	name  string
	regex *regexp.Regexp
	score float64
}

// Compile validates spec and compiles its regular expression
func Compile(spec Spec) (*Pattern, error) {
	if strings.TrimSpace(spec.Regex) == "" {
		return nil, fmt.Errorf("pattern %q: regex is empty", spec.Name)
	}
	if spec.Score < 0 || spec.Score > 1 {
		return nil, fmt.Errorf("pattern %q: score %.2f is outside [0,1]", spec.Name, spec.Score)
	}
	re, err := regexp.Compile(spec.Regex)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", spec.Name, err)
	}
	return &Pattern{name: spec.Name, regex: re, score: spec.Score}, nil
}

// Name returns the pattern name
func (p *Pattern) Name() string {
	return p.name
}

// Score returns the base confidence score
func (p *Pattern) Score() float64 {
	return p.score
}

// Source returns the regular expression source text
func (p *Pattern) Source() string {
	return p.regex.String()
}

// FindAll returns the byte spans of all non-overlapping matches in text
func (p *Pattern) FindAll(text string) [][]int {
	return p.regex.FindAllStringIndex(text, -1)
}

// denyListSpec builds an alternation of quoted literal terms. Term edges
// made of ASCII word characters get a \b anchor so "Dr" does not match "Drive".
func denyListSpec(terms []string, score float64) Spec {
	alternatives := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		alt := regexp.QuoteMeta(term)
		if isASCIIWordByte(term[0]) {
			alt = `\b` + alt
		}
		if isASCIIWordByte(term[len(term)-1]) {
			alt += `\b`
		}
		alternatives = append(alternatives, alt)
	}
	return Spec{
		Name:  "deny_list",
		Regex: "(?:" + strings.Join(alternatives, "|") + ")",
		Score: score,
	}
}

func isASCIIWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
