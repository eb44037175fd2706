// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package registry indexes recognizers by language. A Registry is assembled
// once with a Builder and is read-only afterwards, so any number of requests
// may read it concurrently.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/recognizers/pattern"
)

// Entry is a registered recognizer with its position for the language
type Entry struct {
	Recognizer detector.Recognizer
	Rank       int
}

// Registry maps languages to ordered recognizers
type Registry struct {
	languages   []string
	recognizers map[string][]Entry
}

// Builder collects recognizers and validates them into a Registry
type Builder struct {
	languages   []string
	supported   map[string]bool
	recognizers map[string][]detector.Recognizer
	names       map[string]map[string]bool
	errs        []error
}

// NewBuilder starts a registry for the given supported languages
func NewBuilder(languages []string) *Builder {
	b := &Builder{
		supported:   make(map[string]bool, len(languages)),
		recognizers: make(map[string][]detector.Recognizer),
		names:       make(map[string]map[string]bool),
	}
	for _, lang := range languages {
		if lang == "" || b.supported[lang] {
			continue
		}
		b.supported[lang] = true
		b.languages = append(b.languages, lang)
	}
	return b
}

// Add registers r for language. Registration order is the tie-break order.
func (b *Builder) Add(language string, r detector.Recognizer) *Builder {
	if !b.supported[language] {
		b.errs = append(b.errs, fmt.Errorf("recognizer %s declares language %q which is not in supported_languages %v",
			r.Name(), language, b.languages))
		return b
	}
	if b.names[language] == nil {
		b.names[language] = make(map[string]bool)
	}
	if b.names[language][r.Name()] {
		b.errs = append(b.errs, fmt.Errorf("recognizer %s is registered twice for language %q", r.Name(), language))
		return b
	}
	b.names[language][r.Name()] = true
	b.recognizers[language] = append(b.recognizers[language], r)
	return b
}

// AddDefinition compiles def and registers it for its declared language
func (b *Builder) AddDefinition(def pattern.Definition) *Builder {
	r, err := pattern.New(def)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Add(def.Language, r)
}

// AddFactory instantiates the named recognizer for language and registers it
func (b *Builder) AddFactory(f *Factories, name, language string) *Builder {
	r, err := f.Create(name, language)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	return b.Add(language, r)
}

// Build returns the Registry, or a ConfigurationError listing every problem
// found while adding recognizers
func (b *Builder) Build() (*Registry, error) {
	if len(b.languages) == 0 {
		b.errs = append(b.errs, errors.New("supported_languages is empty"))
	}
	if len(b.errs) > 0 {
		return nil, detector.NewConfigurationError("registry", errors.Join(b.errs...))
	}

	reg := &Registry{
		languages:   slices.Clone(b.languages),
		recognizers: make(map[string][]Entry, len(b.recognizers)),
	}
	for lang, recognizers := range b.recognizers {
		entries := make([]Entry, len(recognizers))
		for i, r := range recognizers {
			entries[i] = Entry{Recognizer: r, Rank: i}
		}
		reg.recognizers[lang] = entries
	}
	return reg, nil
}

// Languages returns the supported languages in configuration order
func (r *Registry) Languages() []string {
	return slices.Clone(r.languages)
}

// Supports reports whether language is supported and has recognizers
func (r *Registry) Supports(language string) bool {
	return len(r.recognizers[language]) > 0
}

// Recognizers returns the recognizers for language in registration order.
// A language that is unknown or has no recognizers is unsupported.
func (r *Registry) Recognizers(language string) ([]Entry, error) {
	entries := r.recognizers[language]
	if len(entries) == 0 {
		return nil, &detector.UnsupportedLanguageError{Language: language, Supported: r.ActiveLanguages()}
	}
	return slices.Clone(entries), nil
}

// ActiveLanguages returns the supported languages that have recognizers
func (r *Registry) ActiveLanguages() []string {
	var active []string
	for _, lang := range r.languages {
		if r.Supports(lang) {
			active = append(active, lang)
		}
	}
	return active
}

// Entities returns the sorted entity types detectable in language
func (r *Registry) Entities(language string) ([]string, error) {
	entries, err := r.Recognizers(language)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var types []string
	for _, e := range entries {
		for _, t := range e.Recognizer.Entities() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types, nil
}
