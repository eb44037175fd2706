// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/recognizers/builtin"
	"pii-analyzer/internal/recognizers/pattern"
)

type stubRecognizer struct {
	name     string
	entities []string
}

func (s stubRecognizer) Name() string       { return s.name }
func (s stubRecognizer) Entities() []string { return s.entities }
func (s stubRecognizer) Analyze(context.Context, string, string) ([]detector.Candidate, error) {
	return nil, nil
}

func plateDefinition(language string) pattern.Definition {
	return pattern.Definition{
		Name:       "BePlateRecognizer",
		EntityType: "BE_LICENSE_PLATE",
		Language:   language,
		Patterns:   []pattern.Spec{{Name: "plate", Regex: `\b\d-[A-Z]{3}-\d{3}\b`, Score: 0.8}},
	}
}

func TestBuildOrdersByRegistration(t *testing.T) {
	reg, err := NewBuilder([]string{"fr", "en"}).
		AddFactory(Predefined(), "email", "fr").
		AddFactory(Predefined(), "iban", "fr").
		AddDefinition(plateDefinition("fr")).
		Add("fr", stubRecognizer{name: "NERRecognizer", entities: []string{"PERSON"}}).
		AddFactory(Predefined(), "email", "en").
		Build()
	require.NoError(t, err)

	entries, err := reg.Recognizers("fr")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	var names []string
	for i, e := range entries {
		assert.Equal(t, i, e.Rank)
		names = append(names, e.Recognizer.Name())
	}
	assert.Equal(t, []string{"EmailRecognizer", "IbanRecognizer", "BePlateRecognizer", "NERRecognizer"}, names)

	entities, err := reg.Entities("fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"BE_LICENSE_PLATE", "EMAIL_ADDRESS", "IBAN", "PERSON"}, entities)

	assert.Equal(t, []string{"fr", "en"}, reg.Languages())
	assert.True(t, reg.Supports("en"))
}

func TestRecognizersUnsupportedLanguage(t *testing.T) {
	reg, err := NewBuilder([]string{"fr", "nl"}).AddFactory(Predefined(), "email", "fr").Build()
	require.NoError(t, err)

	for _, lang := range []string{"de", "nl", ""} {
		_, err := reg.Recognizers(lang)
		var unsupported *detector.UnsupportedLanguageError
		require.True(t, errors.As(err, &unsupported), "language %q", lang)
		assert.Equal(t, lang, unsupported.Language)
		assert.Equal(t, []string{"fr"}, unsupported.Supported)
	}
	assert.Equal(t, []string{"fr"}, reg.ActiveLanguages())
	assert.Equal(t, []string{"fr", "nl"}, reg.Languages())
}

func TestBuildReportsConfigurationErrors(t *testing.T) {
	bad := plateDefinition("fr")
	bad.Patterns[0].Regex = `(`

	tests := []struct {
		name    string
		builder *Builder
		wantErr string
	}{
		{
			name:    "language not supported",
			builder: NewBuilder([]string{"fr"}).AddDefinition(plateDefinition("de")),
			wantErr: `declares language "de"`,
		},
		{
			name:    "bad regex",
			builder: NewBuilder([]string{"fr"}).AddDefinition(bad),
			wantErr: "missing closing )",
		},
		{
			name:    "unknown factory",
			builder: NewBuilder([]string{"fr"}).AddFactory(Predefined(), "passport", "fr"),
			wantErr: `unknown recognizer "passport"`,
		},
		{
			name:    "duplicate name",
			builder: NewBuilder([]string{"fr"}).AddDefinition(plateDefinition("fr")).AddDefinition(plateDefinition("fr")),
			wantErr: "registered twice",
		},
		{
			name:    "no languages",
			builder: NewBuilder(nil),
			wantErr: "supported_languages is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := tt.builder.Build()
			require.Error(t, err)
			assert.Nil(t, reg)
			var cfgErr *detector.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecognizersReturnsCopy(t *testing.T) {
	reg, err := NewBuilder([]string{"fr"}).AddFactory(Predefined(), "email", "fr").Build()
	require.NoError(t, err)

	entries, _ := reg.Recognizers("fr")
	entries[0].Rank = 42

	again, _ := reg.Recognizers("fr")
	assert.Equal(t, 0, again[0].Rank)
}

func TestPredefinedFactories(t *testing.T) {
	f := Predefined()
	assert.ElementsMatch(t, builtin.Names(), f.Names())
	_, err := f.Create("passport", "fr")
	var cfgErr *detector.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	r, err := f.Create("phone", "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"PHONE_NUMBER"}, r.Entities())
	aware, ok := r.(detector.ContextAware)
	require.True(t, ok)
	assert.Contains(t, aware.ContextKeywords(), "contactez")
}

func TestCustomFactory(t *testing.T) {
	f := NewFactories()
	f.Register("stub", func(language string) (detector.Recognizer, error) {
		return stubRecognizer{name: "Stub_" + language, entities: []string{"X"}}, nil
	})

	reg, err := NewBuilder([]string{"fr", "en"}).AddFactory(f, "stub", "fr").AddFactory(f, "stub", "en").Build()
	require.NoError(t, err)
	entries, err := reg.Recognizers("en")
	require.NoError(t, err)
	assert.Equal(t, "Stub_en", entries[0].Recognizer.Name())
}
