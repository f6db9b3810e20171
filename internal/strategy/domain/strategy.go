// Package domain 期权策略聚合
package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"gorm.io/gorm"
)

// Status 策略状态
type Status string

const (
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

// DefaultUnderlying 默认标的
const DefaultUnderlying = "DAX"

var (
	ErrStrategyNotFound  = apperr.NotFound("strategy")
	ErrStrategyForbidden = apperr.Forbidden("strategy")
)

// ParseStatus 解析状态，空串返回 active
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusActive, nil
	case StatusActive, StatusClosed, StatusExpired:
		return s, nil
	default:
		return "", apperr.Invalid("invalid strategy status %q", raw)
	}
}

// Strategy 用户记录的期权策略
type Strategy struct {
	gorm.Model
	UserID          uint                `gorm:"column:user_id;index;not null" json:"userId"`
	Name            string              `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description     string              `gorm:"column:description;type:text" json:"description"`
	StrategyType    string              `gorm:"column:strategy_type;type:varchar(100);not null" json:"strategyType"`
	UnderlyingAsset string              `gorm:"column:underlying_asset;type:varchar(50);not null;default:'DAX'" json:"underlyingAsset"`
	StrikePrice     decimal.NullDecimal `gorm:"column:strike_price;type:decimal(20,4)" json:"strikePrice"`
	Premium         decimal.NullDecimal `gorm:"column:premium;type:decimal(20,4)" json:"premium"`
	ExpirationDate  *time.Time          `gorm:"column:expiration_date" json:"expirationDate"`
	Quantity        int                 `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Status          Status              `gorm:"column:status;type:varchar(10);not null;default:'active'" json:"status"`
}

func (Strategy) TableName() string { return "strategies" }

// Validate 校验字段约束
func (s *Strategy) Validate() error {
	if n := utf8.RuneCountInString(s.Name); n < 1 || n > 255 {
		return apperr.Invalid("name must be 1..255 characters")
	}
	if n := utf8.RuneCountInString(s.StrategyType); n < 1 || n > 100 {
		return apperr.Invalid("strategyType must be 1..100 characters")
	}
	if s.Quantity <= 0 {
		return apperr.Invalid("quantity must be a positive integer")
	}
	if s.StrikePrice.Valid && !s.StrikePrice.Decimal.IsPositive() {
		return apperr.Invalid("strikePrice must be positive")
	}
	if s.Premium.Valid && s.Premium.Decimal.IsNegative() {
		return apperr.Invalid("premium must not be negative")
	}
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return err
	}
	return nil
}

// Repository 策略仓储；Get 未找到时返回 nil, nil
type Repository interface {
	Save(ctx context.Context, s *Strategy) error
	Get(ctx context.Context, id uint) (*Strategy, error)
	ListByUser(ctx context.Context, userID uint) ([]*Strategy, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Strategy, error)
	Delete(ctx context.Context, id uint) error
}

// LinkCleaner 删除策略时清理其在组合中的关联
type LinkCleaner interface {
	RemoveStrategyLinks(ctx context.Context, strategyID uint) error
}
