package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
)

var now = time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func closedLeg(t analysis.OptionType, strike string, qty int, trade, closing string) *Leg {
	closedAt := now
	return &Leg{
		OptionType:        t,
		Strike:            d(strike),
		ExpiryDate:        now.AddDate(0, 1, 0),
		OpeningDate:       now.AddDate(0, -1, 0),
		Quantity:          qty,
		TradePrice:        d(trade),
		ClosingPrice:      decimal.NewNullDecimal(d(closing)),
		ClosingDate:       &closedAt,
		OpeningCommission: DefaultCommission,
		ClosingCommission: DefaultCommission,
	}
}

func TestRealizedPnL_ClosedLegsOnly(t *testing.T) {
	s := &Structure{
		Tag:        "DAX March",
		Multiplier: DefaultMultiplier,
		Legs: []*Leg{
			closedLeg(analysis.OptionTypeCall, "20000", 1, "300", "450"),
			closedLeg(analysis.OptionTypePut, "19000", -2, "200", "50"),
			{
				OptionType:        analysis.OptionTypeCall,
				Strike:            d("21000"),
				ExpiryDate:        now.AddDate(0, 1, 0),
				Quantity:          1,
				TradePrice:        d("100"),
				OpeningCommission: DefaultCommission,
				ClosingCommission: DefaultCommission,
			},
		},
	}

	// 746 + 1496，未平仓腿不计入
	assert.Equal(t, "2242", s.RealizedPnL().String())
	assert.Len(t, s.OpenLegs(), 1)
}

func TestClose_PricesOpenLegs(t *testing.T) {
	manual := closedLeg(analysis.OptionTypePut, "90", 1, "4", "3")
	s := &Structure{
		Tag:        "condor",
		Multiplier: DefaultMultiplier,
		Status:     StatusActive,
		Legs: []*Leg{
			{
				OptionType:        analysis.OptionTypeCall,
				Strike:            d("100"),
				ExpiryDate:        now.Add(365 * 24 * time.Hour),
				Quantity:          1,
				TradePrice:        d("8"),
				ImpliedVolatility: d("20"),
			},
			{
				OptionType:  analysis.OptionTypePut,
				Strike:      d("110"),
				ExpiryDate:  now.Add(-time.Hour),
				Quantity:    -1,
				TradePrice:  d("12"),
				ClosingDate: nil,
			},
			manual,
		},
	}

	require.NoError(t, s.Close(100, 0.05, now))
	assert.Equal(t, StatusClosed, s.Status)
	require.NotNil(t, s.ClosingDate)
	assert.Empty(t, s.OpenLegs())

	assert.Equal(t, "10.4506", s.Legs[0].ClosingPrice.Decimal.String())
	assert.Equal(t, "10", s.Legs[1].ClosingPrice.Decimal.String())
	assert.Equal(t, "3", s.Legs[2].ClosingPrice.Decimal.String())
	assert.True(t, s.Legs[0].ClosedByStructure)
	assert.False(t, s.Legs[2].ClosedByStructure)

	assert.ErrorIs(t, s.Close(100, 0.05, now), ErrAlreadyClosed)

	require.NoError(t, s.Reopen())
	assert.Equal(t, StatusActive, s.Status)
	assert.Nil(t, s.ClosingDate)
	assert.Len(t, s.OpenLegs(), 2)
	assert.False(t, s.Legs[2].IsOpen())

	assert.ErrorIs(t, s.Reopen(), ErrNotClosed)
}

func TestClose_FailsWithoutVolatility(t *testing.T) {
	s := &Structure{
		Tag:        "naked",
		Multiplier: DefaultMultiplier,
		Status:     StatusActive,
		Legs: []*Leg{{
			OptionType: analysis.OptionTypeCall,
			Strike:     d("100"),
			ExpiryDate: now.AddDate(0, 1, 0),
			Quantity:   1,
			TradePrice: d("2"),
		}},
	}
	err := s.Close(100, 0.01, now)
	assert.ErrorIs(t, err, analysis.ErrInvalidPricingInput)
	assert.Equal(t, StatusActive, s.Status)
	assert.True(t, s.Legs[0].IsOpen())
}

func TestClose_FarOutOfMoneyLegUsesBoundaryPrice(t *testing.T) {
	s := &Structure{
		Tag:        "wings",
		Multiplier: DefaultMultiplier,
		Status:     StatusActive,
		Legs: []*Leg{
			{
				OptionType:        analysis.OptionTypeCall,
				Strike:            d("1000"),
				ExpiryDate:        now.Add(3 * 24 * time.Hour),
				Quantity:          -1,
				TradePrice:        d("1"),
				ImpliedVolatility: d("10"),
			},
			{
				OptionType:        analysis.OptionTypePut,
				Strike:            d("1000"),
				ExpiryDate:        now.Add(3 * 24 * time.Hour),
				Quantity:          1,
				TradePrice:        d("880"),
				ImpliedVolatility: d("10"),
			},
		},
	}

	require.NoError(t, s.Close(100, 0, now))
	assert.Equal(t, StatusClosed, s.Status)
	assert.Equal(t, "0", s.Legs[0].ClosingPrice.Decimal.String())
	assert.Equal(t, "900", s.Legs[1].ClosingPrice.Decimal.String())
}

func TestPayoff_OpenLegsOnly(t *testing.T) {
	s := &Structure{
		Tag:        "straddle",
		Multiplier: DefaultMultiplier,
		Legs: []*Leg{
			{OptionType: analysis.OptionTypeCall, Strike: d("100"), Quantity: 1, TradePrice: d("5")},
			{OptionType: analysis.OptionTypePut, Strike: d("100"), Quantity: 1, TradePrice: d("5")},
			closedLeg(analysis.OptionTypeCall, "120", -1, "1", "0.5"),
		},
	}

	res, err := s.Payoff(analysis.PriceRange{Min: 80, Max: 120, Step: 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 110}, res.BreakEvenPoints)

	closedOnly := &Structure{Legs: []*Leg{closedLeg(analysis.OptionTypeCall, "100", 1, "1", "2")}}
	_, err = closedOnly.Payoff(analysis.PriceRange{Min: 80, Max: 120, Step: 10})
	assert.ErrorIs(t, err, ErrNoOpenLegs)
}

func TestValidate(t *testing.T) {
	valid := func() *Structure {
		return &Structure{
			Tag:        "ok",
			Multiplier: DefaultMultiplier,
			Legs: []*Leg{{
				OptionType: analysis.OptionTypeCall,
				Strike:     d("100"),
				ExpiryDate: now,
				Quantity:   -1,
				TradePrice: d("1"),
			}},
		}
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*Structure)
	}{
		{"empty tag", func(s *Structure) { s.Tag = " " }},
		{"zero multiplier", func(s *Structure) { s.Multiplier = decimal.Zero }},
		{"no legs", func(s *Structure) { s.Legs = nil }},
		{"zero quantity", func(s *Structure) { s.Legs[0].Quantity = 0 }},
		{"bad type", func(s *Structure) { s.Legs[0].OptionType = "swap" }},
		{"zero strike", func(s *Structure) { s.Legs[0].Strike = decimal.Zero }},
		{"missing expiry", func(s *Structure) { s.Legs[0].ExpiryDate = time.Time{} }},
		{"negative commission", func(s *Structure) { s.Legs[0].OpeningCommission = d("-1") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}
