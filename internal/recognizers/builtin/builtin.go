// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package builtin holds the predefined recognizer definitions that can be
// enabled by name from configuration. The set is closed: a name that is not
// listed here is a configuration error.
package builtin

import (
	"sort"

	"pii-analyzer/internal/recognizers/pattern"
)

// entry describes one predefined recognizer. Patterns are language
// independent; context keywords are looked up per language.
type entry struct {
	name       string
	entityType string
	patterns   []pattern.Spec
	context    map[string][]string
	validation pattern.Validation
}

// order is the registration order used when every predefined recognizer is enabled
var order = []string{
	"email",
	"iban",
	"phone",
	"credit_card",
	"ip_address",
	"url",
	"date_time",
	"money",
	"be_national_register_number",
	"be_enterprise_number",
	"be_bank_account",
	"fr_social_security_number",
}

var entries = map[string]entry{}

func register(e entry) {
	entries[e.name] = e
}

// Names returns every predefined recognizer name in default registration order
func Names() []string {
	return append([]string(nil), order...)
}

// Known reports whether name is a predefined recognizer
func Known(name string) bool {
	_, ok := entries[name]
	return ok
}

// Definition returns the definition of the named recognizer bound to language.
// Languages without a keyword list get no context keywords.
func Definition(name, language string) (pattern.Definition, bool) {
	e, ok := entries[name]
	if !ok {
		return pattern.Definition{}, false
	}
	return pattern.Definition{
		Name:       recognizerName(e.name),
		EntityType: e.entityType,
		Language:   language,
		Patterns:   append([]pattern.Spec(nil), e.patterns...),
		Context:    append([]string(nil), e.context[language]...),
		Validation: e.validation,
	}, true
}

// EntityTypes returns the entity types of all predefined recognizers, sorted
func EntityTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, e := range entries {
		if !seen[e.entityType] {
			seen[e.entityType] = true
			types = append(types, e.entityType)
		}
	}
	sort.Strings(types)
	return types
}

// recognizerName turns "be_bank_account" into "BeBankAccountRecognizer"
func recognizerName(name string) string {
	out := make([]byte, 0, len(name)+len("Recognizer"))
	upper := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out) + "Recognizer"
}
