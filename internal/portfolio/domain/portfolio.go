// Package domain 投资组合聚合与策略关联
package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	strategy "github.com/wyfcoding/optionsdesk/internal/strategy/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"gorm.io/gorm"
)

// RiskLevel 组合风险等级
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var (
	ErrPortfolioNotFound  = apperr.NotFound("portfolio")
	ErrPortfolioForbidden = apperr.Forbidden("portfolio")
)

// ParseRiskLevel 解析风险等级，空串返回 medium
func ParseRiskLevel(raw string) (RiskLevel, error) {
	switch l := RiskLevel(strings.ToLower(strings.TrimSpace(raw))); l {
	case "":
		return RiskMedium, nil
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return l, nil
	default:
		return "", apperr.Invalid("invalid risk level %q", raw)
	}
}

// Portfolio 投资组合聚合根
type Portfolio struct {
	gorm.Model
	UserID      uint            `gorm:"column:user_id;index;not null" json:"userId"`
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	TotalValue  decimal.Decimal `gorm:"column:total_value;type:decimal(20,4);not null;default:0" json:"totalValue"`
	RiskLevel   RiskLevel       `gorm:"column:risk_level;type:varchar(10);not null;default:'medium'" json:"riskLevel"`
}

func (Portfolio) TableName() string { return "portfolios" }

// PortfolioStrategy 组合与策略的多对多关联
type PortfolioStrategy struct {
	PortfolioID uint      `gorm:"column:portfolio_id;primaryKey" json:"portfolioId"`
	StrategyID  uint      `gorm:"column:strategy_id;primaryKey;index" json:"strategyId"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (PortfolioStrategy) TableName() string { return "portfolio_strategies" }

// Validate 校验字段约束
func (p *Portfolio) Validate() error {
	if n := utf8.RuneCountInString(p.Name); n < 1 || n > 255 {
		return apperr.Invalid("name must be 1..255 characters")
	}
	if p.TotalValue.IsNegative() {
		return apperr.Invalid("totalValue must not be negative")
	}
	if _, err := ParseRiskLevel(string(p.RiskLevel)); err != nil {
		return err
	}
	return nil
}

// Repository 组合仓储；Get 未找到时返回 nil, nil
type Repository interface {
	Save(ctx context.Context, p *Portfolio) error
	Get(ctx context.Context, id uint) (*Portfolio, error)
	ListByUser(ctx context.Context, userID uint) ([]*Portfolio, error)
	// Delete 同时删除组合下的策略关联
	Delete(ctx context.Context, id uint) error

	AddStrategy(ctx context.Context, portfolioID, strategyID uint) error
	RemoveStrategy(ctx context.Context, portfolioID, strategyID uint) error
	StrategyIDs(ctx context.Context, portfolioID uint) ([]uint, error)
	RemoveStrategyLinks(ctx context.Context, strategyID uint) error
}

// StrategyReader 组合上下文对策略的只读依赖
type StrategyReader interface {
	Get(ctx context.Context, id uint) (*strategy.Strategy, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*strategy.Strategy, error)
}
