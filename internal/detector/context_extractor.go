// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Token is a word or symbol run with its byte offsets in the source text
type Token struct {
	Text  string
	Start int
	End   int
	Word  bool // false for symbol runs such as "-" or ":"
}

// ContextInfo stores the tokens surrounding a match
type ContextInfo struct {
	Before []Token // closest token last
	After  []Token // closest token first
}

// ContextExtractor extracts a token window around a span
type ContextExtractor struct {
	// Number of tokens before the match to consider
	PrefixTokens int

	// Number of tokens after the match to consider
	SuffixTokens int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		PrefixTokens: 5,
		SuffixTokens: 5,
	}
}

// WithWindow sets the number of tokens on both sides of the match
func (ce *ContextExtractor) WithWindow(tokens int) *ContextExtractor {
	ce.PrefixTokens = tokens
	ce.SuffixTokens = tokens
	return ce
}

// Window returns the tokens immediately before start and after end, taking
// tokens from one Tokenize call so it can serve every candidate of a request.
// Only word tokens count toward the window size; symbol tokens between them
// are kept. Tokens that straddle the span boundary belong to neither side.
func (ce *ContextExtractor) Window(tokens []Token, start, end int) ContextInfo {
	var info ContextInfo
	if start > end {
		return info
	}

	// first token ending after start
	i := sort.Search(len(tokens), func(k int) bool { return tokens[k].End > start })
	from := i
	for k, words := i-1, 0; k >= 0 && words < ce.PrefixTokens; k-- {
		if tokens[k].Word {
			words++
		}
		from = k
	}
	info.Before = tokens[from:i]

	// first token starting at or after end
	j := sort.Search(len(tokens), func(k int) bool { return tokens[k].Start >= end })
	to := j
	for k, words := j, 0; k < len(tokens) && words < ce.SuffixTokens; k++ {
		if tokens[k].Word {
			words++
		}
		to = k + 1
	}
	info.After = tokens[j:to]

	return info
}

// Tokenize splits text into word tokens (letters, digits and marks, with
// apostrophes joining letters as in "d'entreprise") and symbol tokens (runs
// of other non-space characters such as "@" or "-").
func Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			start := i
			i += size
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if isWordRune(r) {
					i += size
					continue
				}
				if isApostrophe(r) && i+size < len(text) {
					next, _ := utf8.DecodeRuneInString(text[i+size:])
					if unicode.IsLetter(next) {
						i += size
						continue
					}
				}
				break
			}
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i, Word: true})
		default:
			start := i
			i += size
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if unicode.IsSpace(r) || isWordRune(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i})
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}
