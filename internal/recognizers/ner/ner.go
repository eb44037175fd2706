// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ner provides a recognizer that delegates named-entity detection to
// an NLP sidecar over HTTP. The sidecar owns the model; this package only maps
// its labels onto the engine's entity vocabulary and its character offsets
// onto byte offsets.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/resilience"
)

const (
	// DefaultScore is used when the sidecar does not report a confidence
	DefaultScore = 0.85

	DefaultTimeout        = 10 * time.Second
	DefaultMaxConcurrency = 4

	recognizerName = "NERRecognizer"
	maxErrorBody   = 512
)

// labels maps model labels to entity types. Anything else is dropped.
var labels = map[string]string{
	"PER":    "PERSON",
	"PERSON": "PERSON",
	"LOC":    "LOCATION",
	"GPE":    "LOCATION",
	"ORG":    "ORGANIZATION",
	"NORP":   "NRP",
	"DATE":   "DATE_TIME",
}

// EntityTypes returns the entity types the recognizer can produce
func EntityTypes() []string {
	return []string{"DATE_TIME", "LOCATION", "NRP", "ORGANIZATION", "PERSON"}
}

// Config holds the sidecar connection settings
type Config struct {
	// Endpoint is the sidecar base URL, e.g. "http://localhost:8001"
	Endpoint string

	// Languages the sidecar has models for
	Languages []string

	// Timeout bounds a single sidecar call (0 = DefaultTimeout)
	Timeout time.Duration

	// MaxConcurrency bounds in-flight sidecar calls (0 = DefaultMaxConcurrency)
	MaxConcurrency int

	// MaxRetries bounds retries of transient failures (nil = resilience default)
	MaxRetries *int

	// Logger for logging (nil = no logging)
	Logger *zap.Logger

	// HTTPClient overrides the default client, mostly for tests
	HTTPClient *http.Client
}

// Recognizer calls the sidecar's /ner endpoint. It is safe for concurrent use.
type Recognizer struct {
	url       string
	languages map[string]bool
	timeout   time.Duration
	http      *http.Client
	sem       *semaphore.Weighted
	retry     resilience.RetryConfig
	breaker   *resilience.CircuitBreaker
	logger    *zap.Logger
}

type nerRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type nerResponse struct {
	Entities []nerEntity `json:"entities"`
}

type nerEntity struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Label string   `json:"label"`
	Score *float64 `json:"score,omitempty"`
}

// New creates a Recognizer for cfg
func New(cfg Config) (*Recognizer, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, detector.NewConfigurationError("ner", errors.New("endpoint is required"))
	}
	if len(cfg.Languages) == 0 {
		return nil, detector.NewConfigurationError("ner", errors.New("at least one language is required"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = DefaultMaxConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	languages := make(map[string]bool, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		languages[lang] = true
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries != nil {
		retry.MaxRetries = max(*cfg.MaxRetries, 0)
	}
	retry.OnRetry = func(attempt int, err error) {
		logger.Warn("retrying NER call", zap.Int("attempt", attempt), zap.Error(err))
	}
	breakerConfig := resilience.DefaultCircuitBreakerConfig(recognizerName)
	breakerConfig.OnStateChange = func(name string, from, to resilience.CircuitBreakerState) {
		logger.Warn("NER circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}

	logger.Info("NER sidecar configured",
		zap.String("endpoint", endpoint),
		zap.Strings("languages", cfg.Languages),
		zap.Int("maxConcurrency", concurrency),
		zap.Int("maxRetries", retry.MaxRetries))

	return &Recognizer{
		url:       endpoint + "/ner",
		languages: languages,
		timeout:   timeout,
		http:      client,
		sem:       semaphore.NewWeighted(int64(concurrency)),
		retry:     retry,
		breaker:   resilience.NewCircuitBreaker(breakerConfig),
		logger:    logger,
	}, nil
}

// Name implements detector.Recognizer
func (r *Recognizer) Name() string {
	return recognizerName
}

// Entities implements detector.Recognizer
func (r *Recognizer) Entities() []string {
	return EntityTypes()
}

// Breaker reports the state of the circuit breaker guarding sidecar calls
func (r *Recognizer) Breaker() resilience.Snapshot {
	return r.breaker.Snapshot()
}

// Supports reports whether the sidecar has a model for language
func (r *Recognizer) Supports(language string) bool {
	return r.languages[language]
}

// Analyze implements detector.Recognizer. Sidecar failures are returned as
// errors, never as an empty result.
func (r *Recognizer) Analyze(ctx context.Context, text, language string) ([]detector.Candidate, error) {
	if !r.Supports(language) {
		return nil, nil
	}

	// Acquire a call slot (blocks while the sidecar is saturated)
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("ner: acquiring call slot: %w", err)
	}
	defer r.sem.Release(1)

	var entities []nerEntity
	err := resilience.RetryWithCircuitBreaker(ctx, r.retry, r.breaker, func(ctx context.Context) error {
		var err error
		entities, err = r.call(ctx, text, language)
		return err
	})
	if err != nil {
		r.logger.Error("NER call failed", zap.String("language", language), zap.Error(err))
		return nil, err
	}

	offsets := byteOffsets(text)
	candidates := make([]detector.Candidate, 0, len(entities))
	for _, e := range entities {
		entityType, ok := labels[strings.ToUpper(e.Label)]
		if !ok {
			continue
		}
		if e.Start < 0 || e.End > len(offsets)-1 || e.Start >= e.End {
			return nil, fmt.Errorf("ner: entity %s has invalid span [%d,%d) for text of %d characters",
				e.Label, e.Start, e.End, len(offsets)-1)
		}

		score := DefaultScore
		if e.Score != nil {
			score = detector.ClampScore(*e.Score)
		}
		candidates = append(candidates, detector.Candidate{
			EntityType:   entityType,
			Start:        offsets[e.Start],
			End:          offsets[e.End],
			Score:        score,
			RecognizerID: recognizerName,
			Explanation: &detector.Explanation{
				Recognizer:         recognizerName,
				OriginalScore:      score,
				Score:              score,
				TextualExplanation: fmt.Sprintf("Identified as %s by the NER model (label %s)", entityType, e.Label),
			},
		})
	}

	r.logger.Debug("NER completed",
		zap.String("language", language),
		zap.Int("entities", len(entities)),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}

func (r *Recognizer) call(ctx context.Context, text, language string) ([]nerEntity, error) {
	body, err := json.Marshal(nerRequest{Text: text, Language: language})
	if err != nil {
		return nil, fmt.Errorf("ner: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resilience.ClassifyHTTPStatus(resp.StatusCode,
			fmt.Sprintf("ner: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}

	var result nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ner: decode: %w", err)
	}
	return result.Entities, nil
}

// byteOffsets maps each character index of text to its byte offset. The
// extra final entry is len(text), so exclusive end offsets map too.
func byteOffsets(text string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}
