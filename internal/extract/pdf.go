// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// maxPDFPages limits body text extraction for very large documents
const maxPDFPages = 200

// PDFExtractor reads PDF body text with ledongthuc/pdf and the document
// information dictionary with pdfcpu
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (p *PDFExtractor) Name() string {
	return "pdf"
}

func (p *PDFExtractor) CanProcess(path string) bool {
	return hasExtension(path, ".pdf")
}

// Extract returns the page text followed by document metadata. A PDF whose
// body cannot be read still yields its metadata.
func (p *PDFExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	body, bodyErr := extractPDFText(ctx, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metadata, metaErr := extractPDFMetadata(path)
	if bodyErr != nil && metaErr != nil {
		return nil, fmt.Errorf("error reading PDF: %w", bodyErr)
	}

	var b strings.Builder
	b.WriteString(body)
	if metadata != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(metadata)
	}
	return &Document{Source: path, Extractor: p.Name(), Text: b.String()}, nil
}

// extractPDFText concatenates the plain text of each page
func extractPDFText(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pages := min(r.NumPage(), maxPDFPages)
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// extractPDFMetadata renders the info dictionary as "Key: value" lines
func extractPDFMetadata(path string) (string, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", err
	}
	// Validation fills the info dictionary fields of the context
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", err
	}

	var b strings.Builder
	joinLines(&b, "Title", pdfCtx.Title)
	joinLines(&b, "Author", pdfCtx.Author)
	joinLines(&b, "Subject", pdfCtx.Subject)
	joinLines(&b, "Creator", pdfCtx.Creator)
	joinLines(&b, "Producer", pdfCtx.Producer)

	keys := make([]string, 0, len(pdfCtx.Properties))
	for k := range pdfCtx.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		joinLines(&b, k, pdfCtx.Properties[k])
	}
	return b.String(), nil
}
