// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"sort"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/recognizers/builtin"
	"pii-analyzer/internal/recognizers/pattern"
)

// Factory creates a recognizer bound to one language
type Factory func(language string) (detector.Recognizer, error)

// Factories manages named recognizer factories. Names are resolved once
// while building the registry.
type Factories struct {
	factories map[string]Factory
}

// NewFactories creates an empty factory table
func NewFactories() *Factories {
	return &Factories{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any previous one
func (f *Factories) Register(name string, factory Factory) {
	f.factories[name] = factory
}

// Create instantiates the named recognizer for language
func (f *Factories) Create(name, language string) (detector.Recognizer, error) {
	factory, exists := f.factories[name]
	if !exists {
		return nil, detector.NewConfigurationError("predefined_recognizers",
			fmt.Errorf("unknown recognizer %q (known: %v)", name, f.Names()))
	}
	return factory(language)
}

// Names returns the registered names, sorted
func (f *Factories) Names() []string {
	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Predefined returns a factory table holding every builtin recognizer
func Predefined() *Factories {
	f := NewFactories()
	for _, name := range builtin.Names() {
		f.Register(name, builtinFactory(name))
	}
	return f
}

func builtinFactory(name string) Factory {
	return func(language string) (detector.Recognizer, error) {
		def, _ := builtin.Definition(name, language)
		return pattern.New(def)
	}
}
