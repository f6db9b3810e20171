package application

import "github.com/wyfcoding/optionsdesk/internal/analysis/domain"

// CalculateBlackScholesCommand 定价命令
type CalculateBlackScholesCommand struct {
	SpotPrice    float64
	StrikePrice  float64
	TimeToExpiry float64
	RiskFreeRate float64
	Volatility   float64
	OptionType   string
}

func (c CalculateBlackScholesCommand) input() domain.BlackScholesInput {
	return domain.BlackScholesInput{
		S: c.SpotPrice,
		K: c.StrikePrice,
		T: c.TimeToExpiry,
		R: c.RiskFreeRate,
		V: c.Volatility,
	}
}

// CalculatePayoffCommand 盈亏分析命令；Legs 非空时按组合计算，忽略单腿字段
type CalculatePayoffCommand struct {
	StrategyType   string
	StrikePrice    float64
	Premium        float64
	Quantity       int
	SpotPriceRange domain.PriceRange
	Legs           []domain.Leg
}

// HistoryQuery 历史查询；Limit 为空时使用默认条数
type HistoryQuery struct {
	UserID uint
	Limit  *int
}

// MaxHistoryLimit 单次历史查询上限
const MaxHistoryLimit = 100
