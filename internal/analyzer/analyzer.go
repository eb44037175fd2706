// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package analyzer runs the recognition pipeline: recognizers for the
// request language run in parallel, their candidates are context-enhanced,
// overlaps are resolved, allow-listed spans are dropped and the remainder is
// filtered by score threshold.
package analyzer

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pii-analyzer/internal/allowlist"
	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/enhancer"
	"pii-analyzer/internal/observability"
	"pii-analyzer/internal/recognizers/ner"
	"pii-analyzer/internal/registry"
	"pii-analyzer/internal/resolver"
)

const componentName = "analyzer"

// Request is one analysis call
type Request struct {
	Text string

	// Language defaults to the engine default when empty
	Language string

	// ScoreThreshold overrides the configured threshold when set
	ScoreThreshold *float64

	// Entities restricts the analysis to these entity types when non-empty
	Entities []string

	// AllowList replaces the configured allow lists when non-nil
	AllowList []string

	// Context lists extra words that boost every candidate found near them
	Context []string

	// ReturnDecisionProcess keeps the score explanation in results
	ReturnDecisionProcess bool
}

// Result is a detected entity. Offsets are byte offsets into the request text.
type Result struct {
	EntityType  string                `json:"entity_type" yaml:"entity_type"`
	Start       int                   `json:"start" yaml:"start"`
	End         int                   `json:"end" yaml:"end"`
	Score       float64               `json:"score" yaml:"score"`
	Recognizer  string                `json:"recognizer" yaml:"recognizer"`
	Explanation *detector.Explanation `json:"analysis_explanation,omitempty" yaml:"analysis_explanation,omitempty"`
}

// Engine is an immutable analyzer. It is safe for concurrent use.
type Engine struct {
	registry         *registry.Registry
	enhancer         *enhancer.Enhancer
	keywords         map[string]map[string]enhancer.Keywords
	allowList        *allowlist.AllowList
	defaultLanguage  string
	defaultThreshold float64
	observer         *observability.StandardObserver
	sidecar          *ner.Recognizer
}

var _ observability.Observable = (*Engine)(nil)

// GetComponentName implements observability.Observable
func (e *Engine) GetComponentName() string {
	return componentName
}

// DefaultLanguage returns the language used when a request names none
func (e *Engine) DefaultLanguage() string {
	return e.defaultLanguage
}

// DefaultThreshold returns the configured score threshold
func (e *Engine) DefaultThreshold() float64 {
	return e.defaultThreshold
}

// Languages returns the languages that have recognizers
func (e *Engine) Languages() []string {
	return e.registry.ActiveLanguages()
}

// Recognizers returns the recognizer names for language in registration order
func (e *Engine) Recognizers(language string) ([]string, error) {
	entries, err := e.registry.Recognizers(e.language(language))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Recognizer.Name()
	}
	return names, nil
}

// Entities returns the entity types detectable in language
func (e *Engine) Entities(language string) ([]string, error) {
	return e.registry.Entities(e.language(language))
}

func (e *Engine) language(language string) string {
	if language == "" {
		return e.defaultLanguage
	}
	return language
}

// Analyze runs the pipeline for one request. Any recognizer failure fails
// the whole request; partial results are never returned.
func (e *Engine) Analyze(ctx context.Context, req Request) ([]Result, error) {
	observer := e.observer.WithRequestID(uuid.New().String())
	language := e.language(req.Language)
	finishTiming := observer.StartOperation(componentName, "analyze", language)

	var finishStep func(bool, string)
	if observer.DebugObserver != nil {
		finishStep = observer.DebugObserver.StartStep(componentName, "analyze", language)
	}

	results, stats, err := e.analyze(ctx, req, language, observer)

	data := observability.StandardObservabilityData{
		Success:       err == nil,
		ContentLength: len(req.Text),
		MatchCount:    len(results),
		Metadata: map[string]interface{}{
			"recognizers": stats.recognizers,
			"candidates":  stats.candidates,
		},
	}
	if err != nil {
		data.Error = err.Error()
	}
	finishTiming(data)
	if finishStep != nil {
		finishStep(err == nil, fmt.Sprintf("%d results", len(results)))
	}
	return results, err
}

type runStats struct {
	recognizers int
	candidates  int
}

func (e *Engine) analyze(ctx context.Context, req Request, language string, observer *observability.StandardObserver) ([]Result, runStats, error) {
	var stats runStats

	if len(req.Text) == 0 {
		return nil, stats, detector.ErrEmptyText
	}
	threshold := e.defaultThreshold
	if req.ScoreThreshold != nil {
		threshold = *req.ScoreThreshold
		if threshold < 0 || threshold > 1 {
			return nil, stats, &detector.InvalidRequestError{
				Field:  "score_threshold",
				Reason: fmt.Sprintf("%v is outside [0,1]", threshold),
			}
		}
	}

	// SELECT_RECOGNIZERS
	entries, err := e.registry.Recognizers(language)
	if err != nil {
		return nil, stats, err
	}
	entries = selectByEntities(entries, req.Entities)
	stats.recognizers = len(entries)
	if len(entries) == 0 {
		return []Result{}, stats, nil
	}

	// RUN_RECOGNIZERS
	candidates, err := e.run(ctx, req.Text, language, entries, observer)
	if err != nil {
		return nil, stats, err
	}
	candidates = filterEntities(candidates, req.Entities)
	stats.candidates = len(candidates)

	// ENHANCE_CONTEXT
	candidates = e.enhancer.Enhance(req.Text, candidates, e.keywords[language], enhancer.CompileKeywords(req.Context))

	// RESOLVE_OVERLAPS
	candidates = resolver.Resolve(candidates)

	// FILTER_ALLOW_LIST
	allowed := e.allowList
	if req.AllowList != nil {
		allowed = allowlist.Override(req.AllowList)
	}
	candidates = allowed.Filter(req.Text, language, candidates)

	// FILTER_THRESHOLD
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < threshold {
			continue
		}
		r := Result{
			EntityType: c.EntityType,
			Start:      c.Start,
			End:        c.End,
			Score:      c.Score,
			Recognizer: c.RecognizerID,
		}
		if req.ReturnDecisionProcess {
			r.Explanation = c.Explanation
		}
		results = append(results, r)
	}

	if d := observer.DebugObserver; d != nil {
		d.LogMetric(componentName, "candidates", stats.candidates)
		d.LogMetric(componentName, "results", len(results))
	}
	return results, stats, nil
}

// run invokes every recognizer concurrently. The first failure cancels the
// others and is returned.
func (e *Engine) run(ctx context.Context, text, language string, entries []registry.Entry, observer *observability.StandardObserver) ([]detector.Candidate, error) {
	outputs := make([][]detector.Candidate, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			name := entry.Recognizer.Name()
			finish := observer.StartTiming(name, "recognize", language)

			found, err := entry.Recognizer.Analyze(gctx, text, language)
			if err == nil {
				err = checkSpans(found, len(text))
			}
			if err != nil {
				finish(false, nil)
				return &detector.RecognizerExecutionError{Recognizer: name, Err: err}
			}
			for j := range found {
				found[j].Rank = entry.Rank
				found[j].Score = detector.ClampScore(found[j].Score)
				if found[j].RecognizerID == "" {
					found[j].RecognizerID = name
				}
			}
			outputs[i] = found
			finish(true, map[string]interface{}{"candidates": len(found)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	var candidates []detector.Candidate
	for _, found := range outputs {
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

func checkSpans(candidates []detector.Candidate, textLen int) error {
	for _, c := range candidates {
		if c.Start < 0 || c.End > textLen || c.Start >= c.End {
			return fmt.Errorf("candidate %s has invalid span [%d,%d) for text of %d bytes", c.EntityType, c.Start, c.End, textLen)
		}
	}
	return nil
}

// selectByEntities keeps the recognizers able to emit one of entities
func selectByEntities(entries []registry.Entry, entities []string) []registry.Entry {
	if len(entities) == 0 {
		return entries
	}
	var selected []registry.Entry
	for _, entry := range entries {
		for _, t := range entry.Recognizer.Entities() {
			if slices.Contains(entities, t) {
				selected = append(selected, entry)
				break
			}
		}
	}
	return selected
}

func filterEntities(candidates []detector.Candidate, entities []string) []detector.Candidate {
	if len(entities) == 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if slices.Contains(entities, c.EntityType) {
			kept = append(kept, c)
		}
	}
	return kept
}
