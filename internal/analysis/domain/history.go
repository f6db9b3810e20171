package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AnalysisType 历史记录类型
type AnalysisType string

const (
	AnalysisTypeBlackScholes AnalysisType = "black_scholes"
)

// AnalysisHistory 定价历史，只追加不修改
type AnalysisHistory struct {
	ID           uint            `json:"id"`
	UserID       uint            `json:"userId"`
	AnalysisType AnalysisType    `json:"analysisType"`
	OptionType   OptionType      `json:"optionType"`
	SpotPrice    decimal.Decimal `json:"spotPrice"`
	StrikePrice  decimal.Decimal `json:"strikePrice"`
	TimeToExpiry decimal.Decimal `json:"timeToExpiry"`
	RiskFreeRate decimal.Decimal `json:"riskFreeRate"`
	Volatility   decimal.Decimal `json:"volatility"`
	OptionPrice  decimal.Decimal `json:"optionPrice"`
	Delta        decimal.Decimal `json:"delta"`
	Gamma        decimal.Decimal `json:"gamma"`
	Vega         decimal.Decimal `json:"vega"`
	Theta        decimal.Decimal `json:"theta"`
	Rho          decimal.Decimal `json:"rho"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewPricingHistory 由一次定价构造历史记录
func NewPricingHistory(userID uint, optionType OptionType, in BlackScholesInput, out *BlackScholesResult) *AnalysisHistory {
	return &AnalysisHistory{
		UserID:       userID,
		AnalysisType: AnalysisTypeBlackScholes,
		OptionType:   optionType,
		SpotPrice:    decimal.NewFromFloat(in.S),
		StrikePrice:  decimal.NewFromFloat(in.K),
		TimeToExpiry: decimal.NewFromFloat(in.T),
		RiskFreeRate: decimal.NewFromFloat(in.R),
		Volatility:   decimal.NewFromFloat(in.V),
		OptionPrice:  decimal.NewFromFloat(out.Price),
		Delta:        decimal.NewFromFloat(out.Delta),
		Gamma:        decimal.NewFromFloat(out.Gamma),
		Vega:         decimal.NewFromFloat(out.Vega),
		Theta:        decimal.NewFromFloat(out.Theta),
		Rho:          decimal.NewFromFloat(out.Rho),
	}
}

// HistoryRepository 历史仓储，只提供追加与查询
type HistoryRepository interface {
	Append(ctx context.Context, h *AnalysisHistory) error
	// ListRecent 按创建时间倒序返回最多 limit 条
	ListRecent(ctx context.Context, userID uint, limit int) ([]*AnalysisHistory, error)
}

// ResultCache 定价结果缓存，未命中返回 (nil, nil)
type ResultCache interface {
	Get(ctx context.Context, optionType OptionType, in BlackScholesInput) (*BlackScholesResult, error)
	Set(ctx context.Context, optionType OptionType, in BlackScholesInput, out *BlackScholesResult) error
}
