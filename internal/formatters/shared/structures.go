// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"strings"
	"unicode/utf8"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/formatters"
)

// RedactedText replaces matched text when ShowMatch is off
const RedactedText = "[REDACTED]"

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Results []JSONMatch `json:"results" yaml:"results"`
}

// JSONMatch represents a single detected entity in JSON/YAML format
type JSONMatch struct {
	Source          string                `json:"source" yaml:"source"`
	Language        string                `json:"language" yaml:"language"`
	EntityType      string                `json:"entity_type" yaml:"entity_type"`
	Text            string                `json:"text" yaml:"text"`
	Score           float64               `json:"score" yaml:"score"`
	ConfidenceLevel string                `json:"confidence_level" yaml:"confidence_level"`
	Start           int                   `json:"start" yaml:"start"`
	End             int                   `json:"end" yaml:"end"`
	LineNumber      int                   `json:"line_number" yaml:"line_number"`
	Column          int                   `json:"column" yaml:"column"`
	Recognizer      string                `json:"recognizer" yaml:"recognizer"`
	Explanation     *detector.Explanation `json:"analysis_explanation,omitempty" yaml:"analysis_explanation,omitempty"`
}

// Match is a result resolved against its report, ready for display
type Match struct {
	Source          string
	Language        string
	EntityType      string
	Text            string
	Score           float64
	ConfidenceLevel string
	Start           int
	End             int
	LineNumber      int
	Column          int
	Recognizer      string
	Explanation     *detector.Explanation
}

// CollectMatches flattens reports into display matches, applying the
// confidence filter and redaction options
func CollectMatches(reports []formatters.Report, options formatters.FormatterOptions) []Match {
	var matches []Match
	for _, report := range reports {
		for _, r := range report.Results {
			if !options.Include(r.Score) {
				continue
			}
			line, column := Position(report.Text, r.Start)
			text := RedactedText
			if options.ShowMatch {
				text = report.Text[r.Start:r.End]
			}
			m := Match{
				Source:          report.Source,
				Language:        report.Language,
				EntityType:      r.EntityType,
				Text:            text,
				Score:           r.Score,
				ConfidenceLevel: formatters.ConfidenceLevel(r.Score),
				Start:           r.Start,
				End:             r.End,
				LineNumber:      line,
				Column:          column,
				Recognizer:      r.Recognizer,
			}
			if options.Verbose {
				m.Explanation = r.Explanation
			}
			matches = append(matches, m)
		}
	}
	return matches
}

// Position returns the 1-based line and code-point column of a byte offset
func Position(text string, offset int) (line, column int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	column = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, column
}

// ConvertMatchesToJSONFormat converts reports to the JSON/YAML structure
func ConvertMatchesToJSONFormat(reports []formatters.Report, options formatters.FormatterOptions) JSONResponse {
	matches := CollectMatches(reports, options)
	response := JSONResponse{Results: make([]JSONMatch, 0, len(matches))}
	for _, m := range matches {
		response.Results = append(response.Results, JSONMatch{
			Source:          m.Source,
			Language:        m.Language,
			EntityType:      m.EntityType,
			Text:            m.Text,
			Score:           m.Score,
			ConfidenceLevel: m.ConfidenceLevel,
			Start:           m.Start,
			End:             m.End,
			LineNumber:      m.LineNumber,
			Column:          m.Column,
			Recognizer:      m.Recognizer,
			Explanation:     m.Explanation,
		})
	}
	return response
}
