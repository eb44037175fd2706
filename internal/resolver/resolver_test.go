// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-analyzer/internal/detector"
)

func cand(entity string, start, end int, score float64, rank int) detector.Candidate {
	return detector.Candidate{EntityType: entity, Start: start, End: end, Score: score, Rank: rank, RecognizerID: entity}
}

func TestResolveEmpty(t *testing.T) {
	assert.Nil(t, Resolve(nil))
	assert.Nil(t, Resolve([]detector.Candidate{}))
}

func TestResolveHigherScoreWinsSameSpan(t *testing.T) {
	out := Resolve([]detector.Candidate{
		cand("NER_GUESS", 0, 10, 0.7, 2),
		cand("CUSTOM", 0, 10, 0.95, 5),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "CUSTOM", out[0].EntityType)
	assert.Equal(t, 0.95, out[0].Score)
}

func TestResolveLaterHigherScoreReplacesSelection(t *testing.T) {
	out := Resolve([]detector.Candidate{
		cand("DATE_TIME", 0, 8, 0.6, 6),
		cand("PHONE_NUMBER", 2, 16, 0.8, 2),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "PHONE_NUMBER", out[0].EntityType)
}

func TestResolveLowerScoreDropped(t *testing.T) {
	out := Resolve([]detector.Candidate{
		cand("PHONE_NUMBER", 0, 14, 0.8, 2),
		cand("DATE_TIME", 0, 8, 0.6, 6),
		cand("NRN", 3, 20, 0.7, 0),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "PHONE_NUMBER", out[0].EntityType)
}

func TestResolveEqualScoreEarlierRecognizerWins(t *testing.T) {
	for _, input := range [][]detector.Candidate{
		{cand("LATE", 0, 10, 0.9, 3), cand("EARLY", 0, 10, 0.9, 1)},
		{cand("EARLY", 0, 10, 0.9, 1), cand("LATE", 0, 10, 0.9, 3)},
		{cand("EARLY", 2, 10, 0.9, 1), cand("LATE", 0, 6, 0.9, 3)},
	} {
		out := Resolve(input)
		require.Len(t, out, 1)
		assert.Equal(t, "EARLY", out[0].EntityType)
	}
}

func TestResolveKeepsDisjointCandidatesInOrder(t *testing.T) {
	out := Resolve([]detector.Candidate{
		cand("B", 10, 15, 0.5, 1),
		cand("A", 0, 5, 0.9, 0),
		cand("C", 5, 10, 0.4, 2),
	})
	require.Len(t, out, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{out[0].EntityType, out[1].EntityType, out[2].EntityType})
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	input := []detector.Candidate{cand("B", 10, 15, 0.5, 1), cand("A", 0, 5, 0.9, 0)}
	Resolve(input)
	assert.Equal(t, "B", input[0].EntityType)
}

func TestResolveIsIdempotent(t *testing.T) {
	inputs := [][]detector.Candidate{
		{
			cand("IBAN", 13, 32, 0.95, 1),
			cand("IBAN", 13, 32, 0.9, 1),
			cand("PHONE_NUMBER", 18, 30, 0.8, 2),
			cand("BE_NRN", 20, 31, 0.7, 8),
			cand("PERSON", 0, 3, 0.85, 12),
		},
		{
			cand("A", 0, 4, 0.5, 3),
			cand("B", 3, 8, 0.6, 2),
			cand("C", 7, 12, 0.7, 1),
			cand("D", 11, 16, 0.8, 0),
		},
		{
			cand("X", 0, 10, 0.5, 0),
			cand("Y", 0, 10, 0.5, 0),
			cand("Z", 0, 12, 0.5, 0),
		},
	}

	for _, input := range inputs {
		once := Resolve(input)
		twice := Resolve(once)
		assert.Equal(t, once, twice)

		for i := 1; i < len(once); i++ {
			assert.False(t, once[i-1].Overlaps(once[i]), "%v overlaps %v", once[i-1], once[i])
			assert.LessOrEqual(t, once[i-1].Start, once[i].Start)
		}
	}
}

func TestResolveChainKeepsLatestWinner(t *testing.T) {
	out := Resolve([]detector.Candidate{
		cand("A", 0, 4, 0.5, 3),
		cand("B", 3, 8, 0.6, 2),
		cand("C", 7, 12, 0.7, 1),
		cand("D", 11, 16, 0.8, 0),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "D", out[0].EntityType)
}
