package domain

import (
	"context"
	"time"
)

// RiskAlertRaisedEventType 严重告警事件类型
const RiskAlertRaisedEventType = "RiskAlertRaised"

// RiskAlertRaisedEvent 严重告警事件，由下游负责通知
type RiskAlertRaisedEvent struct {
	AlertID     uint      `json:"alertId"`
	UserID      uint      `json:"userId"`
	PortfolioID *uint     `json:"portfolioId,omitempty"`
	StrategyID  *uint     `json:"strategyId,omitempty"`
	AlertType   string    `json:"alertType"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	OccurredOn  time.Time `json:"occurredOn"`
}

// EventPublisher 在当前事务中登记领域事件
type EventPublisher interface {
	PublishRiskAlertRaised(ctx context.Context, event RiskAlertRaisedEvent) error
}
