// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/detector"
)

// AnalyzeRequest is the /analyze request body
type AnalyzeRequest struct {
	Text                  string   `json:"text"`
	Language              string   `json:"language,omitempty"`
	ScoreThreshold        *float64 `json:"score_threshold,omitempty"`
	Entities              []string `json:"entities,omitempty"`
	AllowList             []string `json:"allow_list,omitempty"`
	Context               []string `json:"context,omitempty"`
	ReturnDecisionProcess bool     `json:"return_decision_process,omitempty"`
}

// AnalyzeResult is one entity in the /analyze response. Offsets count
// Unicode code points.
type AnalyzeResult struct {
	EntityType          string                `json:"entity_type"`
	Start               int                   `json:"start"`
	End                 int                   `json:"end"`
	Score               float64               `json:"score"`
	AnalysisExplanation *detector.Explanation `json:"analysis_explanation,omitempty"`
	RecognitionMetadata RecognitionMetadata   `json:"recognition_metadata"`
}

// RecognitionMetadata names the recognizer behind a result
type RecognitionMetadata struct {
	RecognizerName string `json:"recognizer_name"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.ready(w) {
		return
	}

	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON: " + err.Error()})
		return
	}

	results, err := s.engine.Analyze(r.Context(), analyzer.Request{
		Text:                  req.Text,
		Language:              req.Language,
		ScoreThreshold:        req.ScoreThreshold,
		Entities:              req.Entities,
		AllowList:             req.AllowList,
		Context:               req.Context,
		ReturnDecisionProcess: req.ReturnDecisionProcess,
	})
	if err != nil {
		s.sendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(req.Text, results))
}

// toResponse converts byte offsets to code-point offsets
func toResponse(text string, results []analyzer.Result) []AnalyzeResult {
	out := make([]AnalyzeResult, len(results))
	if len(results) == 0 {
		return out
	}
	index := codePointIndex(text)
	for i, r := range results {
		out[i] = AnalyzeResult{
			EntityType:          r.EntityType,
			Start:               index[r.Start],
			End:                 index[r.End],
			Score:               r.Score,
			AnalysisExplanation: r.Explanation,
			RecognitionMetadata: RecognitionMetadata{RecognizerName: r.Recognizer},
		}
	}
	return out
}

// codePointIndex maps every byte offset in text (and len(text)) to the number
// of code points before it
func codePointIndex(text string) []int {
	index := make([]int, len(text)+1)
	count := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		for j := 0; j < size; j++ {
			index[i+j] = count
		}
		count++
		i += size
	}
	index[len(text)] = count
	return index
}
