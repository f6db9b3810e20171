package application

// CreateAlertCommand 创建告警
type CreateAlertCommand struct {
	PortfolioID *uint  `json:"portfolioId"`
	StrategyID  *uint  `json:"strategyId"`
	AlertType   string `json:"alertType"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
}

// UpdateAlertCommand 更新告警，nil 字段保持不变
type UpdateAlertCommand struct {
	AlertType *string `json:"alertType"`
	Severity  *string `json:"severity"`
	Message   *string `json:"message"`
	IsRead    *bool   `json:"isRead"`
}

// CheckThresholdCommand 组合亏损阈值检查
type CheckThresholdCommand struct {
	PortfolioID   uint    `json:"portfolioId"`
	CurrentValue  float64 `json:"currentValue"`
	RiskThreshold float64 `json:"riskThreshold"`
}
