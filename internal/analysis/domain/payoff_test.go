package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePayoff_LongCall(t *testing.T) {
	res, err := CalculatePayoff(PayoffRequest{
		StrategyType:   "call",
		StrikePrice:    20000,
		Premium:        500,
		Quantity:       1,
		SpotPriceRange: PriceRange{Min: 18000, Max: 22000, Step: 500},
	})
	require.NoError(t, err)

	require.Len(t, res.PayoffData, 9)
	assert.Equal(t, 18000.0, res.PayoffData[0].Spot)
	assert.Equal(t, 22000.0, res.PayoffData[len(res.PayoffData)-1].Spot)
	for i := 1; i < len(res.PayoffData); i++ {
		assert.Less(t, res.PayoffData[i-1].Spot, res.PayoffData[i].Spot)
	}

	assert.Equal(t, 1500.0, res.MaxProfit)
	assert.Equal(t, -500.0, res.MaxLoss)
	assert.True(t, res.MaxProfitUnbounded)
	assert.False(t, res.MaxLossUnbounded)

	require.Len(t, res.BreakEvenPoints, 1)
	assert.InDelta(t, 20500, res.BreakEvenPoints[0], 1e-9)
}

func TestCalculatePayoff_InterpolatesCrossing(t *testing.T) {
	res, err := CalculatePayoff(PayoffRequest{
		StrategyType:   "put",
		StrikePrice:    100,
		Premium:        5,
		Quantity:       1,
		SpotPriceRange: PriceRange{Min: 90, Max: 100, Step: 3},
	})
	require.NoError(t, err)

	spots := make([]float64, 0, len(res.PayoffData))
	for _, p := range res.PayoffData {
		spots = append(spots, p.Spot)
	}
	assert.Equal(t, []float64{90, 93, 96, 99, 100}, spots)

	require.Len(t, res.BreakEvenPoints, 1)
	assert.InDelta(t, 95, res.BreakEvenPoints[0], 1e-9)
	assert.Equal(t, 5.0, res.MaxProfit)
	assert.Equal(t, -5.0, res.MaxLoss)
	assert.False(t, res.MaxProfitUnbounded)
	assert.False(t, res.MaxLossUnbounded)
}

func TestCalculatePayoff_ShortDirections(t *testing.T) {
	res, err := CalculatePayoff(PayoffRequest{
		StrategyType:   "short_call",
		StrikePrice:    100,
		Premium:        4,
		Quantity:       2,
		SpotPriceRange: PriceRange{Min: 80, Max: 120, Step: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.MaxProfit)
	assert.Equal(t, -32.0, res.MaxLoss)
	assert.False(t, res.MaxProfitUnbounded)
	assert.True(t, res.MaxLossUnbounded)

	leg, err := PayoffRequest{StrategyType: "short_put", StrikePrice: 100, Quantity: 3}.ToLeg()
	require.NoError(t, err)
	assert.Equal(t, OptionTypePut, leg.OptionType)
	assert.Equal(t, -3, leg.Quantity)

	leg, err = PayoffRequest{StrategyType: "long_call", StrikePrice: 100, Quantity: -3}.ToLeg()
	require.NoError(t, err)
	assert.Equal(t, 3, leg.Quantity)

	leg, err = PayoffRequest{StrategyType: "call", StrikePrice: 100, Quantity: -1}.ToLeg()
	require.NoError(t, err)
	assert.Equal(t, -1, leg.Quantity)
}

func TestCalculateLegsPayoff_Straddle(t *testing.T) {
	legs := []Leg{
		{OptionType: OptionTypeCall, Strike: 100, Premium: 5, Quantity: 1},
		{OptionType: OptionTypePut, Strike: 100, Premium: 5, Quantity: 1},
	}
	res, err := CalculateLegsPayoff(legs, PriceRange{Min: 80, Max: 120, Step: 10})
	require.NoError(t, err)

	payoffs := make([]float64, 0, len(res.PayoffData))
	for _, p := range res.PayoffData {
		payoffs = append(payoffs, p.Payoff)
	}
	assert.Equal(t, []float64{10, 0, -10, 0, 10}, payoffs)
	assert.Equal(t, []float64{90, 110}, res.BreakEvenPoints)
	assert.Equal(t, -10.0, res.MaxLoss)
	assert.True(t, res.MaxProfitUnbounded)
}

func TestCalculateLegsPayoff_OptionTypeCaseInsensitive(t *testing.T) {
	legs := []Leg{
		{OptionType: "CALL", Strike: 100, Premium: 5, Quantity: 1},
		{OptionType: " Put ", Strike: 100, Premium: 5, Quantity: 1},
	}
	res, err := CalculateLegsPayoff(legs, PriceRange{Min: 80, Max: 120, Step: 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 110}, res.BreakEvenPoints)
	assert.True(t, res.MaxProfitUnbounded)
	assert.Equal(t, OptionType("CALL"), legs[0].OptionType, "caller's legs are not mutated")

	_, err = CalculateLegsPayoff([]Leg{{OptionType: "straddle", Strike: 100, Quantity: 1}}, PriceRange{Min: 80, Max: 120, Step: 10})
	assert.ErrorIs(t, err, ErrInvalidOptionType)
}

func TestCalculateLegsPayoff_ZeroRunReportedOnce(t *testing.T) {
	// 零权利金牛市价差在低行权价以下恒为 0
	legs := []Leg{
		{OptionType: OptionTypeCall, Strike: 100, Premium: 0, Quantity: 1},
		{OptionType: OptionTypeCall, Strike: 110, Premium: 0, Quantity: -1},
	}
	res, err := CalculateLegsPayoff(legs, PriceRange{Min: 80, Max: 120, Step: 10})
	require.NoError(t, err)

	assert.Equal(t, []float64{80}, res.BreakEvenPoints)
	assert.False(t, res.MaxProfitUnbounded)
	assert.False(t, res.MaxLossUnbounded)
	assert.Equal(t, 10.0, res.MaxProfit)
	assert.Equal(t, 0.0, res.MaxLoss)
}

func TestCalculatePayoff_Deterministic(t *testing.T) {
	req := PayoffRequest{
		StrategyType:   "put",
		StrikePrice:    20000,
		Premium:        350,
		Quantity:       -2,
		SpotPriceRange: PriceRange{Min: 15000, Max: 25000, Step: 125},
	}
	a, err := CalculatePayoff(req)
	require.NoError(t, err)
	b, err := CalculatePayoff(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPriceRangePoints(t *testing.T) {
	points, err := PriceRange{Min: 0, Max: 10, Step: 3}.Points()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 6, 9, 10}, points)

	points, err = PriceRange{Min: 0, Max: 1, Step: 0.1}.Points()
	require.NoError(t, err)
	assert.Len(t, points, 11)
	assert.Equal(t, 1.0, points[len(points)-1])

	points, err = PriceRange{Min: 0, Max: 10000, Step: 1}.Points()
	require.NoError(t, err)
	assert.Len(t, points, MaxSweepPoints)
}

func TestCalculatePayoff_RejectsInvalidInput(t *testing.T) {
	base := PayoffRequest{
		StrategyType:   "call",
		StrikePrice:    100,
		Premium:        5,
		Quantity:       1,
		SpotPriceRange: PriceRange{Min: 80, Max: 120, Step: 5},
	}
	cases := []struct {
		name   string
		mutate func(r *PayoffRequest)
	}{
		{"min equals max", func(r *PayoffRequest) { r.SpotPriceRange.Min = 120 }},
		{"min above max", func(r *PayoffRequest) { r.SpotPriceRange.Min = 130 }},
		{"zero step", func(r *PayoffRequest) { r.SpotPriceRange.Step = 0 }},
		{"negative step", func(r *PayoffRequest) { r.SpotPriceRange.Step = -5 }},
		{"negative min", func(r *PayoffRequest) { r.SpotPriceRange.Min = -10 }},
		{"too many points", func(r *PayoffRequest) { r.SpotPriceRange = PriceRange{Min: 0, Max: 20000, Step: 1} }},
		{"zero quantity", func(r *PayoffRequest) { r.Quantity = 0 }},
		{"unknown strategy", func(r *PayoffRequest) { r.StrategyType = "iron_condor" }},
		{"zero strike", func(r *PayoffRequest) { r.StrikePrice = 0 }},
		{"negative premium", func(r *PayoffRequest) { r.Premium = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			res, err := CalculatePayoff(req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidPayoffInput)
		})
	}
}
