// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"pii-analyzer/internal/analyzer"
)

// Report is the analysis of one input
type Report struct {
	// Source names the input: a file path, or "-" for inline text
	Source   string
	Language string

	// Text is the analyzed text; results carry byte offsets into it
	Text    string
	Results []analyzer.Result
}

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // Which confidence levels to display (empty = all)
	Verbose         bool            // Whether to display the decision process
	NoColor         bool            // Whether to disable colored output
	ShowMatch       bool            // Whether to display the actual matched text
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the reports in the formatter's output format
	Format(reports []Report, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export formats reports with the named formatter
func Export(format string, reports []Report, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(reports, options)
}

// ConfidenceLevel buckets a score into HIGH, MEDIUM or LOW
func ConfidenceLevel(score float64) string {
	switch {
	case score >= 0.9:
		return "HIGH"
	case score >= 0.6:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ParseConfidenceLevels parses a comma-separated list such as "high,medium".
// "all" or an empty string selects every level.
func ParseConfidenceLevels(levels string) (map[string]bool, error) {
	selected := make(map[string]bool)
	for _, level := range strings.Split(levels, ",") {
		level = strings.ToLower(strings.TrimSpace(level))
		switch level {
		case "", "all":
			continue
		case "high", "medium", "low":
			selected[strings.ToUpper(level)] = true
		default:
			return nil, fmt.Errorf("invalid confidence level %q (use high, medium, low or all)", level)
		}
	}
	return selected, nil
}

// Include reports whether a result with score passes the confidence filter
func (o FormatterOptions) Include(score float64) bool {
	return len(o.ConfidenceLevel) == 0 || o.ConfidenceLevel[ConfidenceLevel(score)]
}
