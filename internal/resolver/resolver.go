// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver removes overlapping candidates so that every character of
// the input belongs to at most one reported entity.
package resolver

import (
	"sort"

	"pii-analyzer/internal/detector"
)

// Resolve returns the non-overlapping subset of candidates, ordered by start.
// Overlaps are settled by score, then by the rank of the recognizer that
// produced the candidate (lower rank wins). The input slice is not modified
// and Resolve(Resolve(x)) equals Resolve(x).
func Resolve(candidates []detector.Candidate) []detector.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]detector.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.End > b.End
	})

	chosen := make([]detector.Candidate, 0, len(sorted))
	for _, c := range sorted {
		if len(chosen) == 0 {
			chosen = append(chosen, c)
			continue
		}
		last := &chosen[len(chosen)-1]
		if !c.Overlaps(*last) {
			chosen = append(chosen, c)
			continue
		}
		if prefer(c, *last) {
			*last = c
		}
	}
	return chosen
}

// prefer reports whether a should replace the selected candidate b
func prefer(a, b detector.Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Rank < b.Rank
}
