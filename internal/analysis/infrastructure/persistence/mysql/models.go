package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
)

// AnalysisHistoryModel 分析历史表映射
type AnalysisHistoryModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at;index:idx_history_user_created,priority:2"`
	UserID       uint      `gorm:"column:user_id;not null;index:idx_history_user_created,priority:1"`
	AnalysisType string    `gorm:"column:analysis_type;type:varchar(32);not null"`
	OptionType   string    `gorm:"column:option_type;type:varchar(8)"`
	SpotPrice    string    `gorm:"column:spot_price;type:decimal(32,18)"`
	StrikePrice  string    `gorm:"column:strike_price;type:decimal(32,18)"`
	TimeToExpiry string    `gorm:"column:time_to_expiry;type:decimal(32,18)"`
	RiskFreeRate string    `gorm:"column:risk_free_rate;type:decimal(32,18)"`
	Volatility   string    `gorm:"column:volatility;type:decimal(32,18)"`
	OptionPrice  string    `gorm:"column:option_price;type:decimal(32,18)"`

	// Greeks 远离平值时可小于 1e-18，定点列会截成 0
	Delta float64 `gorm:"column:delta;type:double"`
	Gamma float64 `gorm:"column:gamma;type:double"`
	Vega  float64 `gorm:"column:vega;type:double"`
	Theta float64 `gorm:"column:theta;type:double"`
	Rho   float64 `gorm:"column:rho;type:double"`
}

func (AnalysisHistoryModel) TableName() string { return "analysis_history" }

// mapping helpers

func toHistoryModel(h *domain.AnalysisHistory) *AnalysisHistoryModel {
	if h == nil {
		return nil
	}
	return &AnalysisHistoryModel{
		ID:           h.ID,
		CreatedAt:    h.CreatedAt,
		UserID:       h.UserID,
		AnalysisType: string(h.AnalysisType),
		OptionType:   string(h.OptionType),
		SpotPrice:    h.SpotPrice.String(),
		StrikePrice:  h.StrikePrice.String(),
		TimeToExpiry: h.TimeToExpiry.String(),
		RiskFreeRate: h.RiskFreeRate.String(),
		Volatility:   h.Volatility.String(),
		OptionPrice:  h.OptionPrice.String(),
		Delta:        h.Delta.InexactFloat64(),
		Gamma:        h.Gamma.InexactFloat64(),
		Vega:         h.Vega.InexactFloat64(),
		Theta:        h.Theta.InexactFloat64(),
		Rho:          h.Rho.InexactFloat64(),
	}
}

func toHistory(m *AnalysisHistoryModel) *domain.AnalysisHistory {
	if m == nil {
		return nil
	}
	return &domain.AnalysisHistory{
		ID:           m.ID,
		UserID:       m.UserID,
		AnalysisType: domain.AnalysisType(m.AnalysisType),
		OptionType:   domain.OptionType(m.OptionType),
		SpotPrice:    parseDecimal(m.SpotPrice),
		StrikePrice:  parseDecimal(m.StrikePrice),
		TimeToExpiry: parseDecimal(m.TimeToExpiry),
		RiskFreeRate: parseDecimal(m.RiskFreeRate),
		Volatility:   parseDecimal(m.Volatility),
		OptionPrice:  parseDecimal(m.OptionPrice),
		Delta:        decimal.NewFromFloat(m.Delta),
		Gamma:        decimal.NewFromFloat(m.Gamma),
		Vega:         decimal.NewFromFloat(m.Vega),
		Theta:        decimal.NewFromFloat(m.Theta),
		Rho:          decimal.NewFromFloat(m.Rho),
		CreatedAt:    m.CreatedAt,
	}
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
