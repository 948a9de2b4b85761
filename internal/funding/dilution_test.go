package funding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalSharesNoHistory(t *testing.T) {
	total, err := TotalShares(nil)
	require.NoError(t, err)
	require.Equal(t, BaselineShares, total)
}

func TestTotalSharesSingleRound(t *testing.T) {
	total, err := TotalShares([]RoundDilution{
		{SequenceNumber: 1, EquityDiluted: 20},
	})
	require.NoError(t, err)
	// 100000 + 100000*0.2/0.8
	require.Equal(t, 125000.0, total)
}

func TestTotalSharesAccumulates(t *testing.T) {
	total, err := TotalShares([]RoundDilution{
		{SequenceNumber: 1, EquityDiluted: 20},
		{SequenceNumber: 2, EquityDiluted: 10},
	})
	require.NoError(t, err)
	// 125000 grown by 10%: 125000 + 125000*0.1/0.9
	require.Equal(t, 138889.0, total)
}

func TestTotalSharesSkipsZeroDilution(t *testing.T) {
	total, err := TotalShares([]RoundDilution{
		{SequenceNumber: 1, EquityDiluted: 0},
		{SequenceNumber: 2, EquityDiluted: 20},
		{SequenceNumber: 3, EquityDiluted: 0},
	})
	require.NoError(t, err)
	require.Equal(t, 125000.0, total)
}

func TestTotalSharesRejectsFullDilution(t *testing.T) {
	_, err := TotalShares([]RoundDilution{{SequenceNumber: 1, EquityDiluted: 100}})
	require.ErrorIs(t, err, ErrArithmetic)
}

func TestTotalSharesRejectsNegativeDilution(t *testing.T) {
	_, err := TotalShares([]RoundDilution{{SequenceNumber: 1, EquityDiluted: -5}})
	require.ErrorIs(t, err, ErrArithmetic)
}

func TestEquityPercentage(t *testing.T) {
	pct, err := EquityPercentage(100000, 1000000)
	require.NoError(t, err)
	require.Equal(t, 10.0, pct)
}

func TestEquityPercentageZeroValuation(t *testing.T) {
	_, err := EquityPercentage(100000, 0)
	require.ErrorIs(t, err, ErrArithmetic)
}

func TestEquityPercentageNegativeAmount(t *testing.T) {
	_, err := EquityPercentage(-1, 1000000)
	require.ErrorIs(t, err, ErrValidation)
}

func TestRoundPercentFormatting(t *testing.T) {
	require.Equal(t, "10.00%", RoundPercent(10))
	require.Equal(t, "3.33%", RoundPercent(10.0/3.0))
	require.Equal(t, "0.00%", RoundPercent(0))
}
