package application

import "github.com/shopspring/decimal"

// CreatePortfolioCommand 创建组合
type CreatePortfolioCommand struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	TotalValue  *decimal.Decimal `json:"totalValue"`
	RiskLevel   string           `json:"riskLevel"`
}

// UpdatePortfolioCommand 部分更新，nil 字段保持不变
type UpdatePortfolioCommand struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	TotalValue  *decimal.Decimal `json:"totalValue"`
	RiskLevel   *string          `json:"riskLevel"`
}

// StrategyLinkCommand 组合与策略关联
type StrategyLinkCommand struct {
	PortfolioID uint `json:"portfolioId"`
	StrategyID  uint `json:"strategyId"`
}
