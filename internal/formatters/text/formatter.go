// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"pii-analyzer/internal/formatters"
	"pii-analyzer/internal/formatters/shared"
)

const (
	maxMatchWidth = 30
	maxTypeWidth  = 28
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []formatters.Report, options formatters.FormatterOptions) (string, error) {
	matches := shared.CollectMatches(reports, options)
	if len(matches) == 0 {
		return "No entities found.", nil
	}

	var builder strings.Builder
	if !options.Verbose {
		f.appendHeaders(&builder, matches, options)
	}
	for _, m := range matches {
		if options.Verbose {
			f.appendDetailedMatch(&builder, m, options)
			continue
		}
		f.appendSummaryLine(&builder, m, matches, options)
	}
	f.appendTotals(&builder, matches, options)
	return builder.String(), nil
}

// paint applies the named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func (f *Formatter) levelColor(level string) string {
	switch level {
	case "HIGH":
		return "red"
	case "MEDIUM":
		return "yellow"
	default:
		return "green"
	}
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, matches []shared.Match, options formatters.FormatterOptions) {
	matchWidth := f.calculateMatchColumnWidth(matches)
	builder.WriteString(f.paint("white", options, "%-8s %-*s %-6s %-10s %-*s %s\n",
		"LEVEL", maxTypeWidth, "TYPE", "SCORE", "LINE:COL", matchWidth, "MATCH", "SOURCE"))

	totalWidth := 8 + 1 + maxTypeWidth + 1 + 6 + 1 + 10 + 1 + matchWidth + 1 + 10
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", totalWidth)))
}

// calculateMatchColumnWidth calculates the optimal width for the match column
func (f *Formatter) calculateMatchColumnWidth(matches []shared.Match) int {
	width := len(shared.RedactedText)
	for _, m := range matches {
		if n := len([]rune(singleLine(m.Text))); n > width {
			width = n
		}
	}
	return min(width, maxMatchWidth)
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, m shared.Match, all []shared.Match, options formatters.FormatterOptions) {
	levelStr := f.paint(f.levelColor(m.ConfidenceLevel), options, "[%-6s]", m.ConfidenceLevel)

	typeDisplay := m.EntityType
	if len(typeDisplay) > maxTypeWidth {
		typeDisplay = typeDisplay[:maxTypeWidth-3] + "..."
	}
	typeStr := f.paint("cyan", options, "%-*s", maxTypeWidth, typeDisplay)
	scoreStr := f.paint("blue", options, "%6.2f", m.Score)
	posStr := f.paint("magenta", options, "%-10s", fmt.Sprintf("%d:%d", m.LineNumber, m.Column))

	// Truncate and pad by rune count so columns stay aligned
	width := f.calculateMatchColumnWidth(all)
	matchText := []rune(singleLine(m.Text))
	if len(matchText) > width {
		matchText = append(matchText[:width-3], []rune("...")...)
	}
	matchStr := string(matchText) + strings.Repeat(" ", width-len(matchText))

	sourceStr := f.paint("white", options, "%s", displaySource(m.Source))

	fmt.Fprintf(builder, "%s %s %s %s %s %s\n", levelStr, typeStr, scoreStr, posStr, matchStr, sourceStr)
}

// appendDetailedMatch adds the match and its decision process
func (f *Formatter) appendDetailedMatch(builder *strings.Builder, m shared.Match, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "=== %s ===\n", m.EntityType))
	fmt.Fprintf(builder, "  Found in %s at line %d, column %d: %s\n",
		f.paint("white", options, "%s", displaySource(m.Source)), m.LineNumber, m.Column, m.Text)
	fmt.Fprintf(builder, "  Score: %s (%s)\n",
		f.paint(f.levelColor(m.ConfidenceLevel), options, "%.2f", m.Score), m.ConfidenceLevel)
	fmt.Fprintf(builder, "  Recognizer: %s\n", f.paint("green", options, "%s", m.Recognizer))
	fmt.Fprintf(builder, "  Language: %s\n", m.Language)

	if e := m.Explanation; e != nil {
		if e.PatternName != "" {
			fmt.Fprintf(builder, "  Pattern: %s\n", e.PatternName)
		}
		fmt.Fprintf(builder, "  Original score: %.2f\n", e.OriginalScore)
		if e.SupportiveContextWord != "" {
			fmt.Fprintf(builder, "  Context: %q (+%.2f)\n", e.SupportiveContextWord, e.ScoreContextImprovement)
		}
		if e.ValidationResult != nil {
			fmt.Fprintf(builder, "  Checksum valid: %t\n", *e.ValidationResult)
		}
		if e.TextualExplanation != "" {
			fmt.Fprintf(builder, "  %s\n", e.TextualExplanation)
		}
	}
	builder.WriteString("\n")
}

// appendTotals adds a per-level count line
func (f *Formatter) appendTotals(builder *strings.Builder, matches []shared.Match, options formatters.FormatterOptions) {
	counts := map[string]int{}
	for _, m := range matches {
		counts[m.ConfidenceLevel]++
	}
	fmt.Fprintf(builder, "\n%d entities found (%s, %s, %s)\n", len(matches),
		f.paint("red", options, "%d high", counts["HIGH"]),
		f.paint("yellow", options, "%d medium", counts["MEDIUM"]),
		f.paint("green", options, "%d low", counts["LOW"]))
}

func singleLine(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
}

func displaySource(source string) string {
	if source == "" || source == "-" {
		return "<text>"
	}
	return filepath.Base(source)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
