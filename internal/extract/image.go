// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ImageExtractor reads the textual EXIF tags of images (artist, copyright,
// description, camera owner and the like)
type ImageExtractor struct{}

// NewImageExtractor creates an EXIF extractor
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

func (i *ImageExtractor) Name() string {
	return "exif"
}

func (i *ImageExtractor) CanProcess(path string) bool {
	return hasExtension(path, ".jpg", ".jpeg", ".tif", ".tiff", ".heic", ".png")
}

// Extract returns one "Tag: value" line per string tag. An image without
// EXIF data yields an empty document.
func (i *ImageExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := &Document{Source: path, Extractor: i.Name()}
	x, err := exif.Decode(f)
	if err != nil {
		return doc, nil
	}

	walker := &exifWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		return nil, err
	}
	doc.Text = walker.text()
	return doc, nil
}

// exifWalker collects string-valued tags
type exifWalker struct {
	tags map[string]string
}

// Walk implements exif.Walker
func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || tag.Format() != tiff.StringVal {
		return nil
	}
	value, err := tag.StringVal()
	if err != nil {
		return nil
	}
	value = strings.TrimRight(value, "\x00 ")
	if value != "" {
		w.tags[string(name)] = value
	}
	return nil
}

func (w *exifWalker) text() string {
	names := make([]string, 0, len(w.tags))
	for name := range w.tags {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		joinLines(&b, name, w.tags[name])
	}
	return b.String()
}
