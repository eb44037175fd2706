// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/extract"
	"pii-analyzer/internal/formatters"
	_ "pii-analyzer/internal/formatters/csv"
	_ "pii-analyzer/internal/formatters/json"
	_ "pii-analyzer/internal/formatters/text"
	_ "pii-analyzer/internal/formatters/yaml"
)

// stdinSource names standard input in reports
const stdinSource = "-"

// AnalyzeCmd analyzes inline text, files or standard input
type AnalyzeCmd struct {
	Text string `arg:"" optional:"" help:"Text to analyze; reads standard input when neither text nor --file is given"`

	File      []string `short:"f" help:"File or glob pattern to analyze (PDF, images and text files); repeatable"`
	Language  string   `short:"l" help:"Language of the text (default: configured default_language)"`
	Threshold string   `short:"t" help:"Minimum score in [0,1] (default: configured default_score_threshold)"`
	Entities  []string `short:"e" sep:"," help:"Only report these entity types, e.g. IBAN,EMAIL_ADDRESS"`
	Context   []string `sep:"," help:"Extra context words that raise nearby scores"`
	AllowList []string `name:"allow-list" sep:"," help:"Literal values to ignore, replacing the configured allow lists"`

	Format     string `default:"text" enum:"text,json,yaml,csv" help:"Output format: text, json, yaml or csv"`
	Confidence string `default:"all" help:"Confidence levels to display: high, medium, low, or combinations like 'high,medium'"`
	Explain    bool   `short:"x" help:"Include the decision process for each result"`
	ShowMatch  bool   `name:"show-match" help:"Display the matched text instead of [REDACTED]"`
	Output     string `short:"o" type:"path" help:"Write results to this file instead of standard output"`
	ExitCode   bool   `name:"exit-code" help:"Exit with status 1 when entities are reported"`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	levels, err := formatters.ParseConfidenceLevels(c.Confidence)
	if err != nil {
		return err
	}
	threshold, err := c.threshold()
	if err != nil {
		return err
	}

	engine, _, observer, err := g.buildEngine()
	if err != nil {
		return err
	}

	ctx := context.Background()
	docs, err := c.inputs(ctx, extract.New(observer))
	if err != nil {
		return err
	}

	language := c.Language
	if language == "" {
		language = engine.DefaultLanguage()
	}

	reports := make([]formatters.Report, 0, len(docs))
	for _, doc := range docs {
		report := formatters.Report{Source: doc.Source, Language: language, Text: doc.Text}
		if doc.Text != "" {
			results, err := engine.Analyze(ctx, analyzer.Request{
				Text:                  doc.Text,
				Language:              language,
				ScoreThreshold:        threshold,
				Entities:              c.Entities,
				AllowList:             c.AllowList,
				Context:               c.Context,
				ReturnDecisionProcess: c.Explain,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", doc.Source, err)
			}
			report.Results = results
		}
		reports = append(reports, report)
	}

	out, closeOut, err := c.writer(g)
	if err != nil {
		return err
	}
	defer closeOut()

	options := formatters.FormatterOptions{
		ConfidenceLevel: levels,
		Verbose:         c.Explain,
		NoColor:         c.Output != "" || g.colorDisabled(out),
		ShowMatch:       c.ShowMatch,
	}
	rendered, err := formatters.Export(c.Format, reports, options)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, rendered); err != nil {
		return err
	}

	if c.ExitCode && reported(reports, options) {
		return errFindings
	}
	return nil
}

// threshold parses --threshold; nil means the configured default
func (c *AnalyzeCmd) threshold() (*float64, error) {
	if c.Threshold == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(c.Threshold, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --threshold %q: %w", c.Threshold, err)
	}
	return &v, nil
}

// inputs returns the documents to analyze: inline text, files, or stdin
func (c *AnalyzeCmd) inputs(ctx context.Context, extractors *extract.Extractors) ([]*extract.Document, error) {
	if c.Text != "" && len(c.File) > 0 {
		return nil, fmt.Errorf("give either TEXT or --file, not both")
	}
	if c.Text != "" {
		return []*extract.Document{{Source: stdinSource, Extractor: "inline", Text: c.Text}}, nil
	}
	if len(c.File) == 0 {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, extract.MaxFileSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return []*extract.Document{{Source: stdinSource, Extractor: "stdin", Text: string(data)}}, nil
	}

	paths, err := expandPaths(c.File)
	if err != nil {
		return nil, err
	}
	docs := make([]*extract.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := extractors.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// expandPaths resolves glob patterns; plain paths are kept as given
func expandPaths(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[") {
			var err error
			matches, err = filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// writer opens the output destination
func (c *AnalyzeCmd) writer(g *Globals) (io.Writer, func(), error) {
	if c.Output == "" {
		return g.stdout, func() {}, nil
	}
	f, err := os.OpenFile(filepath.Clean(c.Output), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// reported reports whether any result passes the confidence filter
func reported(reports []formatters.Report, options formatters.FormatterOptions) bool {
	for _, r := range reports {
		for _, result := range r.Results {
			if options.Include(result.Score) {
				return true
			}
		}
	}
	return false
}
