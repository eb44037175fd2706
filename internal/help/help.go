// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"pii-analyzer/internal/analyzer"
)

// System renders recognizer documentation for the command line
type System struct {
	out    io.Writer
	colors map[string]*color.Color
}

// NewSystem creates a help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	for _, c := range colors {
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return &System{out: out, colors: colors}
}

// ShowRecognizers prints one line per recognizer in registration order
func (h *System) ShowRecognizers(language string, infos []analyzer.RecognizerInfo) {
	h.colors["title"].Fprintf(h.out, "Recognizers for language %q\n", language)
	fmt.Fprintln(h.out, strings.Repeat("=", len(language)+27))
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  RANK\tRECOGNIZER\tENTITIES\tSOURCE")
	fmt.Fprintln(w, "  ----\t----------\t--------\t------")
	for i, info := range infos {
		source := "patterns"
		if info.Remote {
			source = "ner"
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", i, info.Name, strings.Join(info.Entities, ","), source)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "For the patterns and context words of one recognizer, use:")
	example := "<recognizer>"
	if len(infos) > 0 {
		example = infos[0].Name
	}
	h.colors["example"].Fprintf(h.out, "  pii-analyzer recognizers --language %s %s\n", language, example)
}

// ShowRecognizer prints the details of the recognizer called name. It
// returns false when no recognizer has that name.
func (h *System) ShowRecognizer(name string, infos []analyzer.RecognizerInfo) bool {
	var info *analyzer.RecognizerInfo
	for i := range infos {
		if strings.EqualFold(infos[i].Name, name) {
			info = &infos[i]
			break
		}
	}
	if info == nil {
		h.colors["negative"].Fprintf(h.out, "Error: Recognizer '%s' not found.\n", name)
		fmt.Fprintln(h.out, "Use 'pii-analyzer recognizers' to see the registered recognizers.")
		return false
	}

	h.colors["title"].Fprintf(h.out, "%s\n", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(h.out)
	fmt.Fprintf(h.out, "Language: %s\n", info.Language)
	fmt.Fprintf(h.out, "Entities: %s\n", strings.Join(info.Entities, ", "))
	fmt.Fprintln(h.out)

	if info.Remote {
		h.colors["header"].Fprintln(h.out, "NAMED ENTITY RECOGNITION:")
		fmt.Fprintln(h.out, "  Entities come from the configured NER sidecar; scores are the model's.")
		fmt.Fprintln(h.out)
	}

	if len(info.Patterns) > 0 {
		h.colors["header"].Fprintln(h.out, "PATTERNS:")
		w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
		for _, p := range info.Patterns {
			fmt.Fprintf(w, "  - %s\t%.2f\t%s\n", p.Name, p.Score, p.Regex)
		}
		w.Flush()
		fmt.Fprintln(h.out)
	}

	if info.Validation != "" {
		h.colors["header"].Fprintln(h.out, "VALIDATION:")
		fmt.Fprint(h.out, "  ")
		h.colors["item"].Fprintf(h.out, "%s", info.Validation)
		fmt.Fprintln(h.out, " checksum; matches that fail it are dropped")
		fmt.Fprintln(h.out)
	}

	if len(info.Context) > 0 {
		h.colors["header"].Fprintln(h.out, "CONTEXT WORDS:")
		fmt.Fprint(h.out, "  ")
		h.colors["positive"].Fprintln(h.out, strings.Join(info.Context, ", "))
		fmt.Fprintln(h.out)
	}

	h.colors["header"].Fprintln(h.out, "Confidence Levels:")
	fmt.Fprint(h.out, "- ")
	h.colors["negative"].Fprint(h.out, "HIGH")
	fmt.Fprintln(h.out, " (0.90-1.00): Very likely to be personal data")
	fmt.Fprint(h.out, "- ")
	h.colors["warning"].Fprint(h.out, "MEDIUM")
	fmt.Fprintln(h.out, " (0.60-0.89): Possibly personal data")
	fmt.Fprint(h.out, "- ")
	h.colors["positive"].Fprint(h.out, "LOW")
	fmt.Fprintln(h.out, " (0.00-0.59): Likely a false positive")
	return true
}
