package domain

import "time"

const (
	OptionPricedEventType = "OptionPriced"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	UserID       uint       `json:"user_id"`
	HistoryID    uint       `json:"history_id"`
	OptionType   OptionType `json:"option_type"`
	SpotPrice    float64    `json:"spot_price"`
	StrikePrice  float64    `json:"strike_price"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	RiskFreeRate float64    `json:"risk_free_rate"`
	Volatility   float64    `json:"volatility"`
	OptionPrice  float64    `json:"option_price"`
	Delta        float64    `json:"delta"`
	Gamma        float64    `json:"gamma"`
	Vega         float64    `json:"vega"`
	Theta        float64    `json:"theta"`
	Rho          float64    `json:"rho"`
	OccurredOn   time.Time  `json:"occurred_on"`
}
