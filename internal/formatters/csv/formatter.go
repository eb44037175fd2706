// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/json"
	"fmt"
	"strings"

	"pii-analyzer/internal/formatters"
	"pii-analyzer/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(reports []formatters.Report, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Source", "Language", "Entity Type", "Confidence Level", "Score", "Line", "Column", "Recognizer", "Text"}
	if options.Verbose {
		headers = append(headers, "Explanation")
	}

	rows := []string{strings.Join(headers, ",")}
	for _, m := range shared.CollectMatches(reports, options) {
		rows = append(rows, f.createCSVRow(m, options))
	}
	return strings.Join(rows, "\n"), nil
}

// createCSVRow creates a CSV row for a match
func (f *Formatter) createCSVRow(m shared.Match, options formatters.FormatterOptions) string {
	row := []string{
		f.escapeCSVField(m.Source),
		f.escapeCSVField(m.Language),
		f.escapeCSVField(m.EntityType),
		m.ConfidenceLevel,
		fmt.Sprintf("%.2f", m.Score),
		fmt.Sprintf("%d", m.LineNumber),
		fmt.Sprintf("%d", m.Column),
		f.escapeCSVField(m.Recognizer),
		f.escapeCSVField(m.Text),
	}

	if options.Verbose {
		explanation := ""
		if m.Explanation != nil {
			data, err := json.Marshal(m.Explanation)
			if err != nil {
				explanation = "Error serializing explanation"
			} else {
				explanation = string(data)
			}
		}
		row = append(row, f.escapeCSVField(explanation))
	}
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that a spreadsheet would evaluate
// as a formula. Phone numbers such as "+32 470 ..." are affected too.
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}
	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
