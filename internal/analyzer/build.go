// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	"pii-analyzer/internal/allowlist"
	"pii-analyzer/internal/config"
	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/enhancer"
	"pii-analyzer/internal/observability"
	"pii-analyzer/internal/recognizers/ner"
	"pii-analyzer/internal/registry"
)

// Option customizes Build
type Option func(*buildOptions)

type buildOptions struct {
	observer   *observability.StandardObserver
	extra      []extraRecognizer
	httpClient *http.Client
	now        func() time.Time
}

type extraRecognizer struct {
	language   string
	recognizer detector.Recognizer
}

// WithObserver sets the observer used for request logging
func WithObserver(observer *observability.StandardObserver) Option {
	return func(o *buildOptions) {
		o.observer = observer
	}
}

// WithRecognizer registers r for language after the configured custom
// recognizers
func WithRecognizer(language string, r detector.Recognizer) Option {
	return func(o *buildOptions) {
		o.extra = append(o.extra, extraRecognizer{language: language, recognizer: r})
	}
}

// WithHTTPClient sets the client used to reach the NER sidecar
func WithHTTPClient(client *http.Client) Option {
	return func(o *buildOptions) {
		o.httpClient = client
	}
}

// WithClock sets the time source used to expire allow-list file entries
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) {
		o.now = now
	}
}

// Build assembles an Engine from cfg. Recognizers are registered per
// language in this order: predefined, custom, then NER. Every problem is a
// ConfigurationError.
func Build(cfg *config.Config, opts ...Option) (*Engine, error) {
	options := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&options)
	}
	if options.observer == nil {
		options.observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, detector.NewConfigurationError("config", err)
	}

	reg, sidecar, err := buildRegistry(cfg, options)
	if err != nil {
		return nil, err
	}

	enh, err := enhancer.New(cfg.Context)
	if err != nil {
		return nil, err
	}

	allowed := allowlist.New(cfg.AllowList, cfg.AllowListByLanguage)
	if cfg.AllowListFile != "" {
		fromFile, err := allowlist.LoadFile(cfg.AllowListFile, options.now())
		if err != nil {
			return nil, detector.NewConfigurationError("allow_list_file", err)
		}
		allowed = allowed.Merge(fromFile)
	}

	engine := &Engine{
		registry:         reg,
		enhancer:         enh,
		keywords:         compileKeywords(reg),
		allowList:        allowed,
		defaultLanguage:  cfg.DefaultLanguage,
		defaultThreshold: cfg.DefaultScoreThreshold,
		observer:         options.observer,
		sidecar:          sidecar,
	}

	options.observer.Logger().Info("analyzer engine built",
		zap.Strings("languages", reg.ActiveLanguages()),
		zap.String("defaultLanguage", cfg.DefaultLanguage),
		zap.Float64("defaultScoreThreshold", cfg.DefaultScoreThreshold),
		zap.Int("allowListTerms", allowed.Len()))
	return engine, nil
}

func buildRegistry(cfg *config.Config, options buildOptions) (*registry.Registry, *ner.Recognizer, error) {
	var nerRecognizer *ner.Recognizer
	if cfg.NLPEngine.Enabled() {
		r, err := ner.New(ner.Config{
			Endpoint:       cfg.NLPEngine.Endpoint,
			Languages:      cfg.NLPEngine.EffectiveLanguages(cfg.SupportedLanguages),
			Timeout:        cfg.NLPEngine.Timeout,
			MaxConcurrency: cfg.NLPEngine.MaxConcurrency,
			MaxRetries:     &cfg.NLPEngine.MaxRetries,
			Logger:         options.observer.Logger().Named("ner"),
			HTTPClient:     options.httpClient,
		})
		if err != nil {
			return nil, nil, err
		}
		nerRecognizer = r
	}

	predefined := registry.Predefined()
	builder := registry.NewBuilder(cfg.SupportedLanguages)
	for _, lang := range cfg.SupportedLanguages {
		for _, name := range cfg.PredefinedRecognizers {
			builder.AddFactory(predefined, name, lang)
		}
		for _, def := range cfg.Recognizers {
			if def.Language == lang {
				builder.AddDefinition(def)
			}
		}
		for _, extra := range options.extra {
			if extra.language == lang {
				builder.Add(lang, extra.recognizer)
			}
		}
		if nerRecognizer != nil && nerRecognizer.Supports(lang) {
			builder.Add(lang, nerRecognizer)
		}
	}
	// Recognizers declared for a language outside supported_languages are
	// reported by the builder.
	for _, extra := range options.extra {
		if !slices.Contains(cfg.SupportedLanguages, extra.language) {
			builder.Add(extra.language, extra.recognizer)
		}
	}
	reg, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return reg, nerRecognizer, nil
}

// compileKeywords indexes the context keywords of each recognizer by
// language and recognizer name
func compileKeywords(reg *registry.Registry) map[string]map[string]enhancer.Keywords {
	keywords := make(map[string]map[string]enhancer.Keywords)
	for _, lang := range reg.ActiveLanguages() {
		entries, err := reg.Recognizers(lang)
		if err != nil {
			continue
		}
		byName := make(map[string]enhancer.Keywords)
		for _, entry := range entries {
			aware, ok := entry.Recognizer.(detector.ContextAware)
			if !ok {
				continue
			}
			if k := enhancer.CompileKeywords(aware.ContextKeywords()); !k.Empty() {
				byName[entry.Recognizer.Name()] = k
			}
		}
		keywords[lang] = byName
	}
	return keywords
}

// String describes the engine for logs
func (e *Engine) String() string {
	return fmt.Sprintf("analyzer(languages=%v, default=%s, threshold=%.2f)",
		e.registry.ActiveLanguages(), e.defaultLanguage, e.defaultThreshold)
}
