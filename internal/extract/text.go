// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"errors"
	"os"
	"unicode/utf8"
)

// TextExtractor passes UTF-8 text files through unchanged
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (t *TextExtractor) Name() string {
	return "text"
}

// CanProcess accepts anything; content is checked in Extract
func (t *TextExtractor) CanProcess(path string) bool {
	return true
}

func (t *TextExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, errors.Join(ErrUnsupportedFile, errors.New("content is not valid UTF-8 text"))
	}
	// Strip a UTF-8 byte order mark so offsets start at the first character
	text := string(data)
	if len(text) >= 3 && text[:3] == "\xef\xbb\xbf" {
		text = text[3:]
	}
	return &Document{Source: path, Extractor: t.Name(), Text: text}, nil
}
