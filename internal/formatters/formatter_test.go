// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/formatters"
	_ "pii-analyzer/internal/formatters/csv"
	_ "pii-analyzer/internal/formatters/json"
	"pii-analyzer/internal/formatters/shared"
	_ "pii-analyzer/internal/formatters/text"
	_ "pii-analyzer/internal/formatters/yaml"
)

const sampleText = "Bonjour,\nmon IBAN est BE68 5390 0754 7034 et mon mail jean@example.com"

func sampleReports(t *testing.T) []formatters.Report {
	t.Helper()
	iban := strings.Index(sampleText, "BE68")
	mail := strings.Index(sampleText, "jean@")
	require.Positive(t, iban)
	require.Positive(t, mail)

	return []formatters.Report{{
		Source:   "letter.txt",
		Language: "fr",
		Text:     sampleText,
		Results: []analyzer.Result{
			{
				EntityType: "IBAN", Start: iban, End: iban + len("BE68 5390 0754 7034"), Score: 1.0,
				Recognizer: "IbanRecognizer",
				Explanation: &detector.Explanation{
					Recognizer: "IbanRecognizer", PatternName: "IBAN avec espaces",
					OriginalScore: 0.95, Score: 1.0, ScoreContextImprovement: 0.05, SupportiveContextWord: "iban",
				},
			},
			{
				EntityType: "EMAIL_ADDRESS", Start: mail, End: mail + len("jean@example.com"), Score: 0.5,
				Recognizer: "EmailRecognizer",
			},
		},
	}}
}

func TestRegisteredFormatters(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())

	_, err := formatters.Export("sarif", nil, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, text, yaml")
}

func TestParseConfidenceLevels(t *testing.T) {
	levels, err := formatters.ParseConfidenceLevels("high, Medium")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"HIGH": true, "MEDIUM": true}, levels)

	levels, err = formatters.ParseConfidenceLevels("all")
	require.NoError(t, err)
	assert.Empty(t, levels)

	_, err = formatters.ParseConfidenceLevels("critical")
	assert.Error(t, err)
}

func TestConfidenceLevel(t *testing.T) {
	assert.Equal(t, "HIGH", formatters.ConfidenceLevel(0.9))
	assert.Equal(t, "MEDIUM", formatters.ConfidenceLevel(0.6))
	assert.Equal(t, "LOW", formatters.ConfidenceLevel(0.59))
}

func TestPosition(t *testing.T) {
	line, column := shared.Position(sampleText, strings.Index(sampleText, "BE68"))
	assert.Equal(t, 2, line)
	assert.Equal(t, 14, column)

	line, column = shared.Position("é\nàb", len("é\nà"))
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, column)
}

func TestJSONFormatter(t *testing.T) {
	out, err := formatters.Export("json", sampleReports(t), formatters.FormatterOptions{})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Results, 2)

	first := response.Results[0]
	assert.Equal(t, "IBAN", first.EntityType)
	assert.Equal(t, shared.RedactedText, first.Text)
	assert.Equal(t, "HIGH", first.ConfidenceLevel)
	assert.Equal(t, 2, first.LineNumber)
	assert.Equal(t, "letter.txt", first.Source)
	assert.Nil(t, first.Explanation)
	assert.NotContains(t, out, "BE68")
}

func TestJSONFormatterShowMatchVerbose(t *testing.T) {
	out, err := formatters.Export("json", sampleReports(t), formatters.FormatterOptions{ShowMatch: true, Verbose: true})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Results, 2)
	assert.Equal(t, "BE68 5390 0754 7034", response.Results[0].Text)
	require.NotNil(t, response.Results[0].Explanation)
	assert.Equal(t, "iban", response.Results[0].Explanation.SupportiveContextWord)
}

func TestJSONFormatterEmpty(t *testing.T) {
	out, err := formatters.Export("json", nil, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"results": []}`, out)
}

func TestYAMLFormatterConfidenceFilter(t *testing.T) {
	options := formatters.FormatterOptions{ConfidenceLevel: map[string]bool{"LOW": true}, ShowMatch: true}
	out, err := formatters.Export("yaml", sampleReports(t), options)
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, "EMAIL_ADDRESS", response.Results[0].EntityType)
	assert.Equal(t, "jean@example.com", response.Results[0].Text)
}

func TestCSVFormatter(t *testing.T) {
	out, err := formatters.Export("csv", sampleReports(t), formatters.FormatterOptions{ShowMatch: true})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Source,Language,Entity Type,Confidence Level,Score,Line,Column,Recognizer,Text", lines[0])
	assert.Equal(t, "letter.txt,fr,IBAN,HIGH,1.00,2,14,IbanRecognizer,BE68 5390 0754 7034", lines[1])
	assert.Equal(t, "letter.txt,fr,EMAIL_ADDRESS,LOW,0.50,2,46,EmailRecognizer,jean@example.com", lines[2])
}

func TestTextFormatter(t *testing.T) {
	out, err := formatters.Export("text", sampleReports(t), formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)

	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "[HIGH  ] IBAN")
	assert.Contains(t, out, "[LOW   ] EMAIL_ADDRESS")
	assert.Contains(t, out, "letter.txt")
	assert.NotContains(t, out, "jean@example.com")
	assert.Contains(t, out, "2 entities found (1 high, 0 medium, 1 low)")
}

func TestTextFormatterVerbose(t *testing.T) {
	out, err := formatters.Export("text", sampleReports(t), formatters.FormatterOptions{NoColor: true, Verbose: true, ShowMatch: true})
	require.NoError(t, err)

	assert.Contains(t, out, "=== IBAN ===")
	assert.Contains(t, out, "at line 2, column 14: BE68 5390 0754 7034")
	assert.Contains(t, out, "Pattern: IBAN avec espaces")
	assert.Contains(t, out, `Context: "iban" (+0.05)`)
}

func TestTextFormatterNoResults(t *testing.T) {
	out, err := formatters.Export("text", []formatters.Report{{Source: "-", Text: "rien"}}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "No entities found.", out)
}
