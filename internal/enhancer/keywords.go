// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package enhancer

import (
	"strings"

	"golang.org/x/text/cases"

	"pii-analyzer/internal/detector"
)

// Keywords is a compiled keyword list. Multi-word keywords are kept as token
// sequences and only match contiguous tokens.
type Keywords struct {
	phrases []phrase
}

type phrase struct {
	word   string
	tokens []string
}

// CompileKeywords normalizes words for matching. Blank words are ignored.
func CompileKeywords(words []string) Keywords {
	fold := cases.Fold()
	var k Keywords
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		tokens := detector.Tokenize(w)
		if len(tokens) == 0 {
			continue
		}
		p := phrase{word: w, tokens: make([]string, len(tokens))}
		for i, t := range tokens {
			p.tokens[i] = normalize(fold, t.Text)
		}
		k.phrases = append(k.phrases, p)
	}
	return k
}

// Empty reports whether no keyword was compiled
func (k Keywords) Empty() bool {
	return len(k.phrases) == 0
}

// Len returns the number of keywords
func (k Keywords) Len() int {
	return len(k.phrases)
}

// find returns the first keyword found in either side of the window. A
// phrase never spans the match itself.
func (k Keywords) find(before, after []string) (string, bool) {
	for _, p := range k.phrases {
		if containsSequence(before, p.tokens) || containsSequence(after, p.tokens) {
			return p.word, true
		}
	}
	return "", false
}

func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, n := range needle {
			if haystack[i+j] != n {
				continue outer
			}
		}
		return true
	}
	return false
}
