// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns input files into text for analysis: plain text as
// is, PDF body text and document info, and the textual EXIF tags of images.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pii-analyzer/internal/observability"
)

// MaxFileSize bounds the files read by extractors
const MaxFileSize = 50 << 20

// ErrUnsupportedFile is returned when no extractor accepts a file
var ErrUnsupportedFile = errors.New("file type not supported")

// Document is the text extracted from one file
type Document struct {
	Source    string
	Extractor string
	Text      string
}

// Extractor produces text from a file
type Extractor interface {
	// Name returns the extractor identifier
	Name() string

	// CanProcess reports whether the extractor handles path
	CanProcess(path string) bool

	// Extract reads path and returns its text
	Extract(ctx context.Context, path string) (*Document, error)
}

// Extractors tries extractors in order
type Extractors struct {
	extractors []Extractor
	observer   *observability.StandardObserver
}

// New returns the default extractor chain: PDF, images, then plain text
func New(observer *observability.StandardObserver) *Extractors {
	if observer == nil {
		observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	return &Extractors{
		extractors: []Extractor{NewPDFExtractor(), NewImageExtractor(), NewTextExtractor()},
		observer:   observer,
	}
}

// Extract runs the first extractor that accepts path
func (e *Extractors) Extract(ctx context.Context, path string) (*Document, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	for _, extractor := range e.extractors {
		if !extractor.CanProcess(path) {
			continue
		}
		finish := e.observer.StartTiming("extract", extractor.Name(), filepath.Base(path))
		doc, err := extractor.Extract(ctx, path)
		if err != nil {
			finish(false, map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		finish(true, map[string]interface{}{"content_length": len(doc.Text)})
		return doc, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%s is %d bytes, larger than the %d byte limit", path, info.Size(), MaxFileSize)
	}
	return nil
}

func hasExtension(path string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// joinLines appends "label: value" lines for non-empty values
func joinLines(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}
