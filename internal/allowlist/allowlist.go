// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pii-analyzer/internal/detector"
)

// Entry is one allow-listed literal in an allow-list file
type Entry struct {
	Value     string     `yaml:"value"`
	Language  string     `yaml:"language,omitempty"`
	Reason    string     `yaml:"reason,omitempty"`
	Enabled   *bool      `yaml:"enabled,omitempty"`
	CreatedBy string     `yaml:"created_by,omitempty"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty"`
}

// File represents an allow-list file
type File struct {
	Version string  `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// active reports whether the entry applies at now
func (e Entry) active(now time.Time) bool {
	if e.Value == "" {
		return false
	}
	if e.Enabled != nil && !*e.Enabled {
		return false
	}
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// AllowList holds literal terms exempted from detection. Comparison is exact
// and case-sensitive. An AllowList is read-only once built.
type AllowList struct {
	global     map[string]struct{}
	byLanguage map[string]map[string]struct{}
}

// New builds an AllowList from a global list and per-language lists
func New(global []string, byLanguage map[string][]string) *AllowList {
	a := &AllowList{
		global:     make(map[string]struct{}, len(global)),
		byLanguage: make(map[string]map[string]struct{}, len(byLanguage)),
	}
	for _, v := range global {
		a.add("", v)
	}
	for lang, values := range byLanguage {
		for _, v := range values {
			a.add(lang, v)
		}
	}
	return a
}

// Override builds the allow list used for a single request. It applies to
// every language and replaces the configured lists.
func Override(terms []string) *AllowList {
	return New(terms, nil)
}

func (a *AllowList) add(language, value string) {
	if value == "" {
		return
	}
	if language == "" {
		a.global[value] = struct{}{}
		return
	}
	set, ok := a.byLanguage[language]
	if !ok {
		set = make(map[string]struct{})
		a.byLanguage[language] = set
	}
	set[value] = struct{}{}
}

// LoadFile reads an allow-list file. A missing file is an empty list.
// Disabled entries and entries that have expired at now are skipped.
func LoadFile(path string, now time.Time) (*AllowList, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if errors.Is(err, os.ErrNotExist) {
		return New(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allow-list file %s: %w", cleanPath, err)
	}

	a := New(nil, nil)
	for _, e := range file.Entries {
		if e.active(now) {
			a.add(e.Language, e.Value)
		}
	}
	return a, nil
}

// Merge returns a new AllowList holding the terms of a and other
func (a *AllowList) Merge(other *AllowList) *AllowList {
	merged := New(nil, nil)
	for _, src := range []*AllowList{a, other} {
		if src == nil {
			continue
		}
		for v := range src.global {
			merged.add("", v)
		}
		for lang, set := range src.byLanguage {
			for v := range set {
				merged.add(lang, v)
			}
		}
	}
	return merged
}

// Len returns the number of terms across all lists
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	n := len(a.global)
	for _, set := range a.byLanguage {
		n += len(set)
	}
	return n
}

// Allowed reports whether value is allow-listed for language
func (a *AllowList) Allowed(language, value string) bool {
	if a == nil {
		return false
	}
	if _, ok := a.global[value]; ok {
		return true
	}
	_, ok := a.byLanguage[language][value]
	return ok
}

// Filter drops candidates whose matched text is allow-listed for language.
// The input slice is not modified.
func (a *AllowList) Filter(text, language string, candidates []detector.Candidate) []detector.Candidate {
	if a.Len() == 0 {
		return candidates
	}
	kept := make([]detector.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if a.Allowed(language, c.Text(text)) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
