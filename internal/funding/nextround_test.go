package funding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testCatalog = []PredefinedRound{
	{ID: 1, Name: "Pre-Seed", Sequence: 1},
	{ID: 2, Name: "Seed", Sequence: 2},
	{ID: 3, Name: "Series A", Sequence: 3},
	{ID: 4, Name: "Series B", Sequence: 4},
}

func TestNormalizeRoundName(t *testing.T) {
	require.Equal(t, "preseed", NormalizeRoundName("Pre-Seed"))
	require.Equal(t, "preseed", NormalizeRoundName("pre seed"))
	require.Equal(t, "preseed", NormalizeRoundName("PRESEED"))
	require.Equal(t, "seriesa", NormalizeRoundName("Series A"))
	require.Equal(t, "", NormalizeRoundName("--- "))
}

func TestNextRoundCatalogMatch(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "Pre-Seed", SequenceNumber: 1},
		{RoundType: "Seed", SequenceNumber: 2},
	}
	next := NextRound(testCatalog, history, "Seed")
	require.NotNil(t, next)
	require.Equal(t, "Series A", next.Name)
}

func TestNextRoundSkipsAlreadyRaised(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "Seed", SequenceNumber: 1},
		{RoundType: "Series A", SequenceNumber: 2},
	}
	// Series A was raised out of order, so the candidate after Seed skips it.
	next := NextRound(testCatalog, history, "Seed")
	require.NotNil(t, next)
	require.Equal(t, "Series B", next.Name)
}

func TestNextRoundFreeTextAnchorsOnLastCatalogMatch(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "Seed", SequenceNumber: 1},
		{RoundType: "Friends and Family", SequenceNumber: 2},
	}
	next := NextRound(testCatalog, history, "Friends and Family")
	require.NotNil(t, next)
	require.Equal(t, "Series A", next.Name)
}

func TestNextRoundFreeTextWithNoCatalogMatches(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "Angel", SequenceNumber: 1},
	}
	next := NextRound(testCatalog, history, "Angel")
	require.NotNil(t, next)
	require.Equal(t, "Pre-Seed", next.Name)
}

func TestNextRoundNoHistory(t *testing.T) {
	next := NextRound(testCatalog, nil, "")
	require.NotNil(t, next)
	require.Equal(t, "Pre-Seed", next.Name)
}

func TestNextRoundExhaustedCatalog(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "Pre-Seed", SequenceNumber: 1},
		{RoundType: "Seed", SequenceNumber: 2},
		{RoundType: "Series A", SequenceNumber: 3},
		{RoundType: "Series B", SequenceNumber: 4},
	}
	require.Nil(t, NextRound(testCatalog, history, "Series B"))
}

func TestNextRoundEmptyCatalog(t *testing.T) {
	require.Nil(t, NextRound(nil, nil, "Seed"))
}

func TestNextRoundNameMatchingIsNormalized(t *testing.T) {
	history := []RaisedRound{
		{RoundType: "pre-seed", SequenceNumber: 1},
		{RoundType: "SEED", SequenceNumber: 2},
	}
	next := NextRound(testCatalog, history, "seed")
	require.NotNil(t, next)
	require.Equal(t, "Series A", next.Name)
}
