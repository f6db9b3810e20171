package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StructureClosedEventType 结构平仓事件类型
const StructureClosedEventType = "StructureClosed"

// StructureClosedEvent 结构平仓事件
type StructureClosedEvent struct {
	StructureID  uint            `json:"structureId"`
	UserID       uint            `json:"userId"`
	Tag          string          `json:"tag"`
	Spot         float64         `json:"spot"`
	RiskFreeRate float64         `json:"riskFreeRate"`
	RealizedPnL  decimal.Decimal `json:"realizedPnl"`
	OccurredOn   time.Time       `json:"occurredOn"`
}

// StructureSharedEventType 结构分享事件类型
const StructureSharedEventType = "StructureShared"

// StructureSharedEvent 结构分享给管理员，由通知侧发送邮件
type StructureSharedEvent struct {
	StructureID uint      `json:"structureId"`
	UserID      uint      `json:"userId"`
	Tag         string    `json:"tag"`
	AdminEmail  string    `json:"adminEmail"`
	OccurredOn  time.Time `json:"occurredOn"`
}
