// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"

	"pii-analyzer/internal/analyzer"
)

var sampleInfos = []analyzer.RecognizerInfo{
	{
		Name:       "IbanRecognizer",
		Language:   "fr",
		Entities:   []string{"IBAN"},
		Context:    []string{"iban", "virement"},
		Patterns:   []analyzer.PatternInfo{{Name: "IBAN compact", Regex: `\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`, Score: 0.9}},
		Validation: "iban",
	},
	{
		Name:     "NERRecognizer",
		Language: "fr",
		Entities: []string{"PERSON", "LOCATION"},
		Remote:   true,
	},
}

func TestShowRecognizers(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, true).ShowRecognizers("fr", sampleInfos)
	out := buf.String()

	for _, want := range []string{
		`Recognizers for language "fr"`,
		"RECOGNIZER",
		"IbanRecognizer",
		"PERSON,LOCATION",
		"pii-analyzer recognizers --language fr IbanRecognizer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color escapes, got:\n%s", out)
	}
}

func TestShowRecognizer(t *testing.T) {
	var buf bytes.Buffer
	if !NewSystem(&buf, true).ShowRecognizer("ibanrecognizer", sampleInfos) {
		t.Fatal("expected recognizer to be found")
	}
	out := buf.String()
	for _, want := range []string{"PATTERNS:", "IBAN compact", "0.90", "iban checksum", "iban, virement", "HIGH"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowRecognizerRemote(t *testing.T) {
	var buf bytes.Buffer
	if !NewSystem(&buf, true).ShowRecognizer("NERRecognizer", sampleInfos) {
		t.Fatal("expected recognizer to be found")
	}
	if !strings.Contains(buf.String(), "NER sidecar") {
		t.Errorf("expected NER description, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "PATTERNS:") {
		t.Errorf("remote recognizer should not list patterns")
	}
}

func TestShowRecognizerUnknown(t *testing.T) {
	var buf bytes.Buffer
	if NewSystem(&buf, true).ShowRecognizer("Nope", sampleInfos) {
		t.Fatal("expected unknown recognizer to be reported")
	}
	if !strings.Contains(buf.String(), "Recognizer 'Nope' not found") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
